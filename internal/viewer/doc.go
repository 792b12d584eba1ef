// Package viewer provides the user-facing entry points: whole-file display
// (Gat, Gess), markdown rendering (GatMarkdown, GessMarkdown), definition
// display (Code, Gode), name search (Search, Gearch) and documentation
// (Doc).
//
// Highlighting and markdown rendering are delegated to the external
// highlighter through highlight.Invoker; nothing is rendered locally.
package viewer
