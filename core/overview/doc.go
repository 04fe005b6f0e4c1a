// Package overview tallies the language model calls made on behalf of one
// unit of work, typically a single generation request. The tally travels in
// the context so that every client call made under it is counted, including
// calls made concurrently by parallel pipeline steps.
package overview
