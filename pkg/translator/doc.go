// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package translator converts Slack webhook payloads into the two-field
// message relayed to Matrix: a plain-text body plus an optional HTML
// rendering.
//
// A payload carries up to three content shapes at once: a modern block
// sequence, a legacy attachment sequence, and a top-level fallback text.
// [Translate] walks blocks first, then attachments, concatenating their
// output; the fallback text is used only when neither sequence produced
// anything. The plain body is never empty -- a fixed sentinel is
// substituted for payloads with no usable content.
//
// The package is a pure function over one in-memory document. It performs
// no I/O and holds no state between calls, so any number of translations
// may run concurrently.
//
// Sub-package mrkdwn implements the inline markup transpiler and the
// HTML-entity escaper shared by every rendering path.
package translator
