package main

import (
	"fmt"
	"strings"

	c "github.com/ahmetalpbalkan/go-cursor"
	"github.com/logrusorgru/aurora"

	"github.com/mpnetctl/mpnetctl/remote"
)

const barWidth = 24

// drawBoard renders one progress bar per host and keeps updating the
// board from events until the channel closes. Between updates the cursor
// parks at the top left corner of the board.
func drawBoard(hosts []remote.Host, totalSteps int, events <-chan remote.Event) {
	n := len(hosts)
	fmt.Print(c.Hide())
	fmt.Print(strings.Repeat("\n", n))
	fmt.Print(c.MoveUp(n))
	for _, h := range hosts {
		canvas := "[" + strings.Repeat(" ", barWidth) + "] " + h.Name
		fmt.Print(canvas)
		fmt.Print(c.MoveDown(1))
		fmt.Print(c.MoveLeft(len(canvas)))
	}
	// park at the upper left of the board
	fmt.Print(c.MoveUp(n))
	fmt.Print(c.SaveAttributes())

	progress := make([]int, n)
	termed := make([]bool, n)
	for ev := range events {
		id := ev.HostIndex
		if termed[id] {
			continue
		}
		if ev.Done {
			termed[id] = true
			if id != 0 {
				fmt.Print(c.MoveDown(id))
			}
			fmt.Print(strings.Repeat(" ", barWidth+2))
			fmt.Print(c.MoveLeft(barWidth + 2))
			if ev.Err != nil {
				fmt.Print(aurora.Red("failed"))
			} else {
				fmt.Print(aurora.Green("done"))
			}
			fmt.Print(c.RestoreAttributes())
			continue
		}
		if totalSteps > 0 && ev.Steps > progress[id] {
			progress[id] = ev.Steps
			ticks := barWidth * ev.Steps / totalSteps
			if ticks > barWidth {
				ticks = barWidth
			}
			if id != 0 {
				fmt.Print(c.MoveDown(id))
			}
			fmt.Print(c.MoveRight(1))
			fmt.Print(aurora.Faint(strings.Repeat("■", ticks)))
			if ticks != barWidth {
				fmt.Print("|")
			}
			fmt.Print(c.RestoreAttributes())
		}
	}
	fmt.Print(c.MoveDown(n))
	fmt.Print(c.Show())
}
