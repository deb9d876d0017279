package cars

import "strings"

var graphics = map[Type][]string{
	Electrical: {
		`               ___    `,
		`                 \    `,
		`  _______________/__  `,
		` /_| ____________ |_\ `,
		`/   |____________|   \`,
		`\                    /`,
		` \__________________/ `,
		`  (O)(O)      (O)(O)  `,
	},
	Steam: {
		`     ++      +------`,
		`     ||      |+-+ | `,
		`   /---------|| | | `,
		`  + ========  +-+ | `,
		` _|--/~\------/~\-+ `,
		`//// \_/      \_/   `,
	},
	Diesel: {
		`  _____________|____  `,
		` /_| ____________ |_\ `,
		`/   |____________|   \`,
		`\                    /`,
		` \__________________/ `,
		`  (O)(O)      (O)(O)  `,
	},
	Passenger: {
		`____________________`,
		`|  ___ ___ ___ ___ |`,
		`|  |_| |_| |_| |_| |`,
		`|__________________|`,
		`|__________________|`,
		`   (O)        (O)   `,
	},
	Freight: {
		`|                  |`,
		`|                  |`,
		`|                  |`,
		`|__________________|`,
		`   (O)        (O)   `,
	},
	Special: {
		`               ____`,
		`/--------------|  |`,
		`\--------------|  |`,
		`  | |          |  |`,
		` _|_|__________|  |`,
		`|_________________|`,
		`   (O)       (O)   `,
	},
	TrainSet: {
		`         ++         `,
		`         ||         `,
		`_________||_________`,
		`|  ___ ___ ___ ___ |`,
		`|  |_| |_| |_| |_| |`,
		`|__________________|`,
		`|__________________|`,
		`   (O)        (O)   `,
	},
}

// Graphic returns the ASCII-art rows of the unit, top to bottom.
func (s *Stock) Graphic() []string {
	g := graphics[s.Type]
	res := make([]string, len(g))
	copy(res, g)
	return res
}

// Render draws units side by side, bottom-aligned, separated by one column.
func Render(units []*Stock) string {
	height := 0
	for _, u := range units {
		height = max(height, len(graphics[u.Type]))
	}
	columns := make([][]string, len(units))
	for i, u := range units {
		g := graphics[u.Type]
		width := 0
		for _, row := range g {
			width = max(width, len(row))
		}
		col := make([]string, height)
		pad := height - len(g)
		for j := range col {
			row := ""
			if j >= pad {
				row = g[j-pad]
			}
			col[j] = row + strings.Repeat(" ", width-len(row))
		}
		columns[i] = col
	}
	rows := make([]string, height)
	parts := make([]string, len(columns))
	for j := range rows {
		for i, col := range columns {
			parts[i] = col[j]
		}
		rows[j] = strings.Join(parts, " ")
	}
	return strings.Join(rows, "\n")
}
