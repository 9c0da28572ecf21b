// Package session runs the ask-compare-choose loop.
//
// A Controller owns any number of independent Sessions. Each session moves
// through Idle, AwaitingGeneration and AwaitingChoice: Submit selects two
// prompt variants, generates both replies concurrently and parks them as the
// pending selection; Choose turns one side into a preference record, appends
// it to the session log and the durable sink, and returns the session to Idle.
// A session holds at most one pending selection. Reset is accepted in any
// state and discards whatever generation is still in flight.
package session
