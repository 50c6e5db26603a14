// Package artifact holds the three-part code bundle the pipelines produce
// and the machinery that turns raw model text into one.
package artifact

// Artifact is the markup/style/behavior bundle. All three fields are always
// present after parsing; a piece the model did not produce is an empty
// string, never absent. Artifacts are replaced wholesale, never edited in
// place.
type Artifact struct {
	HTML string `json:"htmlCode"`
	CSS  string `json:"cssCode"`
	JS   string `json:"jsCode"`
}
