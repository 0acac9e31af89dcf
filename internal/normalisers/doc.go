// Package normalisers holds the decoders that turn backend payloads into
// domain entities. The backend is loose about shapes: ids arrive as numbers
// or strings, timestamps may be missing, and some lists come wrapped in an
// object. Normalisers absorb that so core services only see domain types.
//
// The entity subpackage covers students, quests, progress, SMS logs and
// recommendations.
package normalisers
