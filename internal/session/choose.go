package session

import (
	"context"

	"askgreg/internal/logging"
	"askgreg/internal/preference"
	"askgreg/internal/services"
)

// Choose records the human's pick for the pending selection. The record is
// appended to the session log and the chosen text to the transcript before
// the durable sink is written; a sink failure is returned as *PersistError
// alongside the record.
func (c *Controller) Choose(ctx context.Context, id string, side Side) (preference.Record, error) {
	s, err := c.session(id)
	if err != nil {
		return preference.Record{}, err
	}
	if side != SideLeft && side != SideRight {
		return preference.Record{}, ErrInvalidSide
	}

	s.mu.Lock()
	if s.state != StateAwaitingChoice || s.pending == nil {
		s.mu.Unlock()
		return preference.Record{}, ErrNoPendingSelection
	}
	p := *s.pending
	record := preference.Record{
		Question: p.UserInput,
		Category: p.Category,
		Provider: p.Provider,
	}
	if side == SideLeft {
		record.ChosenVariant, record.ChosenText = p.FirstVariant, p.FirstText
	} else {
		record.ChosenVariant, record.ChosenText = p.SecondVariant, p.SecondText
	}
	s.log.Append(record)
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: record.ChosenText})
	s.pending = nil
	s.state = StateIdle
	s.mu.Unlock()

	ctx = services.WithCategory(services.WithSessionID(ctx, id), record.Category)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("preference recorded",
		logging.String(logging.FieldVariant, record.ChosenVariant),
		logging.String("side", string(side)),
		logging.String(logging.FieldProvider, record.Provider),
	)

	entry := preference.Entry{Record: record, SessionID: id, RecordedAt: c.now()}
	if err := c.sink.Append(ctx, entry); err != nil {
		logging.ErrorWithContext(logger, "preference sink append failed", "sink_append_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the preferences sink path or database"),
		)
		return record, &PersistError{Err: err}
	}
	return record, nil
}
