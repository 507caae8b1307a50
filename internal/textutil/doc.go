// Package textutil provides the small text transforms shared across stages:
// normalizing raw source field names, pulling bracket-delimited segments out
// of model responses, and parsing bracketed scores.
package textutil
