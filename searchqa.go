// Package searchqa answers free-form questions with a language model that
// can ground its answers in opportunistic web search. Questions are read in
// batches, each one is run through a pipeline that decides whether to
// search, gathers evidence with bounded retries, and synthesizes an answer.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, openai/, trafilatura/).
package searchqa
