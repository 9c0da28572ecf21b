// Command askgreg asks a language model the same question under two prompt
// styles, lets the user pick the better reply, and learns which style they
// prefer.
//
// Subcommands:
//
//	chat        interactive compare-and-choose loop
//	ask         one-shot answer using a single style
//	serve       HTTP JSON API
//	categories  list prompt categories and their styles
//	classify    show how input would be categorized
//	prefs       inspect recorded preferences
//	catalog     edit the external prompt catalog
//	config      create, show and validate configuration
package main
