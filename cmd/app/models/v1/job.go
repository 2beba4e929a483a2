package models

type JobPost struct {
	// ReviewerTable is a CSV path relative to the server's input root, or a
	// "sheets:<id>[#<range>]" reference.
	ReviewerTable string `json:"reviewer_table"`

	// Template is the LaTeX template path relative to the server's input root.
	Template string `json:"template"`

	// DeleteTex removes intermediate .tex files after rendering.
	DeleteTex bool `json:"delete_tex"`
}
