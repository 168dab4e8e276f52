/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <issue-number> <status>",
		Short: "Set the board Status for a tracker issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 { return fmt.Errorf("invalid issue number %q", args[0]) }
			a, err := buildApp(false)
			if err != nil { return err }
			res := a.svc.ResolveAndUpdateStatus(cmd.Context(), a.cfg.Owner, a.cfg.Repo, number, args[1])
			if !res.Success {
				msg := fmt.Sprintf("status update failed (%s)", res.Reason)
				if res.Message != "" { msg += ": " + res.Message }
				if hint := res.Reason.Hint(); hint != "" { msg += "\nhint: " + hint }
				return fmt.Errorf("%s", msg)
			}
			fmt.Printf("issue #%d Status set to %q\n", number, args[1])
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <issue-number> <Field=Value>...",
		Short: "Set one or more board fields for a tracker issue",
		Long:  "Field writes are independent; an unknown field or invalid value is reported and skipped without blocking the rest.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 { return fmt.Errorf("invalid issue number %q", args[0]) }
			fields := map[string]string{}
			for _, pair := range args[1:] {
				name, value, ok := strings.Cut(pair, "=")
				if !ok || name == "" { return fmt.Errorf("invalid field pair %q, want Field=Value", pair) }
				fields[name] = value
			}
			a, err := buildApp(false)
			if err != nil { return err }
			loc, res := a.svc.ResolveProjectItem(cmd.Context(), a.cfg.Owner, a.cfg.Repo, number, a.cfg.ProjectName)
			if !res.Success {
				msg := fmt.Sprintf("could not locate board item (%s)", res.Reason)
				if hint := res.Reason.Hint(); hint != "" { msg += "\nhint: " + hint }
				return fmt.Errorf("%s", msg)
			}
			n := a.svc.SetFields(cmd.Context(), loc.ProjectID, loc.ItemID, fields, loc.Catalog)
			fmt.Printf("%d of %d field(s) written\n", n, len(fields))
			if n < len(fields) { return fmt.Errorf("%d field(s) skipped, see warnings above", len(fields)-n) }
			return nil
		},
	}
}
