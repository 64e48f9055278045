// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"strconv"
	"strings"

	"github.com/bychat/bychat/internal/model"
	"github.com/bychat/bychat/internal/util"
)

// FormatSessionList formats session metadata as a plain-text table
// with id, title, update time, and message count columns.
func FormatSessionList(metas []model.SessionMeta) string {
	if len(metas) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("ID", 10) + " " +
		util.PadWidth("Title", 34) + " " +
		util.PadWidth("Updated", 17) + " Messages\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, m := range metas {
		id := m.ID
		if len(id) > 8 {
			id = id[:8]
		}
		titleCol := m.Title
		if titleCol == "" {
			titleCol = m.Preview
		}
		titleCol = util.TruncateWidth(titleCol, 34)

		sb.WriteString(util.PadWidth(id, 10) + " " +
			util.PadWidth(titleCol, 34) + " " +
			util.PadWidth(m.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			strconv.Itoa(m.MessageCount) + "\n")
	}
	return sb.String()
}
