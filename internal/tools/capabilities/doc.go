// Package capabilities registers the three upstream operations as tools:
// read_url (Reader), search (Search) and ground_statement (Grounding).
//
// Each tool is a builder plus a renderer. The builder turns normalized
// parameters into a wire.CapabilityRequest and is a pure function of its
// inputs; the transport sends it; the content processor renders the payload.
//
// Tools:
//   - read_url (reader, read): GET or POST against the Reader endpoint
//   - search (web_search): POST against the Search endpoint
//   - ground_statement (factcheck, fact_check, grounding): POST against Grounding
package capabilities
