// Package resolve matches the imports of the linked module and the embeds
// required by snippets against the definitions found in object metadata.
//
// Every key lives in one of two namespaces and moves through the states
// Unseen, Expected (needed, not yet defined) or Provided (defined, not yet
// needed), and finally Resolved. Resolving a definition also needs every
// embed it requires. After Finalize no key may remain Expected.
package resolve
