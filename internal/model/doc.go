// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing the chat transcript, the loading placeholder, and diagram
// attachments on assistant responses.
//
// # Key Types
//
//   - Session: Container for a chat session with transcript and input buffer
//   - Message: Single message with sender, text, timestamp, and optional diagrams
//   - DiagramSet: Diagram URLs and type flags attached to a response
//   - Role: Message sender enumeration (user, assistant)
//
// # Usage
//
// Create a session and drive a request cycle:
//
//	sess := model.NewSession()
//	sess.AddUserMessage("Design a queue-based ingestion pipeline")
//	sess.BeginLoading("Analyzing your requirements...")
//	// ... backend call completes ...
//	sess.ResolveLoading(model.NewAssistantMessage(answer))
package model
