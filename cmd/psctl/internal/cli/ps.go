// Copyright 2024 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/lirix-labs/xv6sched/pkg/kernel"
)

// renderPs prints k.Snapshot() as a table, one row per live slot.
func renderPs(k *kernel.Kernel) {
	views := k.Snapshot()

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			strconv.Itoa(int(v.PID)),
			v.Name,
			v.State.String(),
			v.Queue.String(),
			fmt.Sprintf("%.1f", v.ExecutedCycle),
			strconv.FormatInt(v.XTicks, 10),
			fmt.Sprintf("%.1f", v.Priority),
			fmt.Sprintf("%.2f", v.Rank),
		})
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"pid", "name", "state", "queue", "cycle", "xticks", "prio", "rank"})
	table.AppendBulk(rows)
	table.Render()
	fmt.Print(buf.String())
}
