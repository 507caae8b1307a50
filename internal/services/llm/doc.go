// Package llm wraps an OpenRouter-compatible chat completion API. Stage
// handlers treat every failure from this package as "not ready, retry next
// tick", never as a permanent record-level failure.
package llm
