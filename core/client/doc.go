// Package client sits between the pipeline steps and a raw ai.Provider.
//
// A [Client] is built once per process with [New]: it fixes the model, the
// sampling temperature and the middleware chain, then serves any number of
// concurrent single-shot calls through [Client.SendMessage]. Per-call options
// override the system instructions or request a JSON reply shaped by a schema
// ([WithOutputSchema]); [SendStructured] combines such a call with tolerant
// decoding into a Go type, and [SendValidated] also rejects replies that do
// not satisfy the schema.
package client
