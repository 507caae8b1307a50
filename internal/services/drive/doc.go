// Package drive resolves attachment references from the external file
// storage: extracting file IDs from share URLs, downloading binaries with a
// content-type check, and best-effort text extraction from PDFs.
package drive
