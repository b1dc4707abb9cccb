// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package routing loads declarative routing rules for slackr-listen.
//
// A rules file is JSONC (JSON with // and /* */ comments and trailing
// commas):
//
//	{
//	  "rules": [
//	    // Print everything said in #ops.
//	    {"name": "ops", "channels": ["C07R5Q3SGG1"], "action": "print"},
//	    // Echo "!echo" messages from humans.
//	    {
//	      "name": "echo",
//	      "event_type": "message",
//	      "exclude_users": ["U0BOT"],
//	      "text_contains": "!echo",
//	      "action": "echo",
//	    },
//	  ],
//	}
//
// Each [Rule] compiles to a socketmode.Predicate with
// [Rule.Predicate]. Empty fields do not constrain. Rules are
// registered in file order, so the socketmode registry runs their
// handlers in file order.
package routing
