/*
Package transform implements the record transformer invoked by the
delivery stream. It is a pure batch-in/batch-out function: each record is
decoded, enriched and re-encoded on its own, and classified as Ok,
ProcessingFailed or Dropped so the delivery stream can route it. No error
ever crosses the batch boundary and no record is ever omitted from the
response.

Payloads that decode to a JSON object are enriched in place. Anything
else (plain text, but also valid non-object JSON such as arrays or bare
scalars) is wrapped into a JSON envelope under the spec's textWrapKey
before enrichment, since only objects can carry the marker fields.
*/
package transform
