// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside teammesh.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Render the shared, origin-labeled conversation log the same way for every provider
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI compatible endpoints, Anthropic direct or via Bedrock)
// implement the Model interface so workers and supervisors remain decoupled
// from vendor SDKs.
package model
