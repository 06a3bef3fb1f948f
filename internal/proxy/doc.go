// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package proxy implements the local HTTP proxy for the scribe frontend.
//
// The proxy exposes three routes on localhost:
//
//   - POST /api/chat relays a conversation request verbatim to the remote
//     backend and passes the JSON response through unchanged. Backend
//     failures of any kind surface as HTTP 500 with {error, details}.
//   - GET /api/chat?url=&filename= fetches a generated diagram image and
//     streams it back as a PNG attachment with a sanitized filename.
//   - GET /health reports proxy status and backend reachability.
//
// All routes run behind a middleware chain providing panic recovery,
// per-request UUIDs, request logging, CORS, and per-client-IP rate
// limiting.
package proxy
