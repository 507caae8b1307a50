// Package services holds the error taxonomy and context plumbing shared by
// the external collaborators (source rows, attachment storage, language
// model) and the stage handlers that consume them.
package services
