package bomber

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/bombarena/internal/core"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

const (
	hudHeight = 2
	cellWidth = 2 // Screen columns per board cell
	panelGap  = 2
	panelW    = 24
)

// minWidth is the narrowest screen that fits the board and its border.
func (g *Game) minWidth() int {
	return g.eng.Config().Width*cellWidth + 2
}

// minHeight fits the HUD, the bordered board and the footer.
func (g *Game) minHeight() int {
	return hudHeight + g.eng.Config().Height + 2 + 1
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	snap := g.eng.Snapshot()

	g.renderHUD(dst, snap)

	if g.tooSmall {
		g.renderOverlay(dst, "Window too small",
			fmt.Sprintf("Need %dx%d", g.minWidth(), g.minHeight()))
		return
	}

	board := g.boardRect(dst, snap)
	dst.DrawBox(board, core.ColorGray)
	DrawBoard(dst, snap, board.X+1, board.Y+1, g.clock())
	g.renderPanel(dst, snap, board.Right()+panelGap, board.Y)
	g.renderFooter(dst)

	switch {
	case g.fatal != nil:
		g.renderOverlay(dst, "Engine error", "Press R to restart")
	case snap.Over:
		title := "Draw"
		if snap.Winner != 0 {
			title = fmt.Sprintf("P%d wins!", snap.Winner)
			if snap.Winner == g.human {
				title = "You win!"
			}
		}
		g.renderOverlay(dst, title, "Press R to restart")
	case g.over():
		g.renderOverlay(dst, "You were blown up", "Press R to restart")
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// boardRect places the bordered board below the HUD, centred in the space
// left after the side panel when the panel fits.
func (g *Game) boardRect(dst *core.Screen, snap engine.Snapshot) core.Rect {
	bw, bh := BoardSize(snap)
	w, h := bw+2, bh+2
	total := w
	if dst.Width() >= w+panelGap+panelW {
		total = w + panelGap + panelW
	}
	x := max(0, (dst.Width()-total)/2)
	return core.NewRect(x, hudHeight, w, h)
}

// renderHUD draws the status line and separator.
func (g *Game) renderHUD(dst *core.Screen, snap engine.Snapshot) {
	rounds := fmt.Sprintf("%d", snap.RoundCount+1)
	if limit := g.eng.Config().MaxRounds; limit > 0 {
		rounds = fmt.Sprintf("%d/%d", min(snap.RoundCount+1, limit), limit)
	}
	hud := fmt.Sprintf(" %s | Round %s  Turn %d", g.Title(), rounds, snap.TurnCount+1)
	dst.DrawText(0, 0, hud)

	if !snap.Over {
		turn := fmt.Sprintf(" P%d to move ", snap.CurrentPlayer)
		if snap.CurrentPlayer == g.human {
			turn = " Your move "
		}
		dst.DrawTextColored(dst.Width()-len(turn), 0, turn, core.PlayerColor(int(snap.CurrentPlayer)))
	}

	for x := range dst.Width() {
		dst.Set(x, 1, '─')
	}
}

// BoardSize returns the screen cells needed to draw snap without a border.
func BoardSize(snap engine.Snapshot) (w, h int) {
	return snap.Width * cellWidth, snap.Height
}

// DrawBoard draws terrain, loot, bombs, explosions still burning at now and
// players, in that order, with the board origin at (ox, oy).
func DrawBoard(dst *core.Screen, snap engine.Snapshot, ox, oy int, now time.Time) {
	put := func(c engine.Coord, text string, color core.Color) {
		dst.DrawTextColored(ox+c.X*cellWidth, oy+c.Y, text, color)
	}

	for y, row := range snap.Terrain {
		for x, t := range row {
			switch t {
			case engine.TerrainHard:
				put(engine.C(x, y), "██", core.ColorGray)
			case engine.TerrainSoft:
				put(engine.C(x, y), "▒▒", core.ColorOrange)
			default:
				put(engine.C(x, y), " ·", core.ColorGray)
			}
		}
	}

	for _, l := range snap.Loot {
		glyph := "b+"
		switch l.Kind {
		case engine.LootFlashRadius:
			glyph = "r+"
		case engine.LootBombPickup:
			glyph = "p+"
		}
		put(l.Pos, glyph, core.ColorBrightBlue)
	}

	for _, b := range engine.ArmedBombs(snap.Bombs) {
		put(b.Pos, fmt.Sprintf("●%d", min(b.RoundsLeft, 9)), core.PlayerColor(int(b.Owner)))
	}

	for _, e := range snap.Explosions {
		if e.Expired(now) {
			continue
		}
		for _, c := range e.Cells {
			put(c, "✶✶", core.ColorBrightRed)
		}
	}

	for _, p := range snap.Players {
		if p.Alive {
			put(p.Pos, fmt.Sprintf("@%d", p.ID), core.PlayerColor(int(p.ID)))
		}
	}
}

// renderPanel lists the players and the latest events to the right of the
// board. It is skipped when it would not fit.
func (g *Game) renderPanel(dst *core.Screen, snap engine.Snapshot, x, y int) {
	if x+panelW > dst.Width() {
		return
	}
	dst.DrawText(x, y, "Players")
	row := y + 1
	for i, p := range snap.Players {
		seat := ""
		if i < len(g.seats) {
			seat = g.seats[i]
		}
		if !p.Alive {
			dst.DrawTextColored(x, row, fmt.Sprintf("P%d %-10s   out", p.ID, seat), core.ColorGray)
			row += 2
			continue
		}
		color := core.PlayerColor(int(p.ID))
		dst.DrawTextColored(x, row, fmt.Sprintf("P%d %-10s %5d", p.ID, seat, p.Score), color)
		stats := fmt.Sprintf("   bombs %d/%d range %d", p.ActiveBombs, p.Capacity, p.Range)
		switch {
		case p.Carrying != 0:
			stats += " ●" // Holding a bomb
		case p.CanPickup:
			stats += " ↑"
		}
		dst.DrawTextColored(x, row+1, stats, color)
		row += 2
	}

	ey := row + 1
	dst.DrawText(x, ey, "Events")
	for i, e := range g.events {
		if ey+1+i >= dst.Height()-1 {
			break
		}
		dst.DrawTextColored(x, ey+1+i, truncate(e, panelW), core.ColorWhite)
	}
}

// renderFooter shows the last rejected action or the key help.
func (g *Game) renderFooter(dst *core.Screen) {
	y := dst.Height() - 1
	if g.lastErr != nil {
		dst.DrawTextColored(1, y, truncate(rejection(g.lastErr), dst.Width()-2), core.ColorRed)
		return
	}
	help := "WASD move  Shift throw  Space bomb  E lift  . stay  P pause  Q quit"
	if g.human == 0 {
		help = "P pause  R restart when over  Q quit"
	}
	dst.DrawTextColored(1, y, truncate(help, dst.Width()-2), core.ColorGray)
}

// rejection explains a rejected keyboard action.
func rejection(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, "engine: ")
	return "Can't do that: " + msg
}

// renderOverlay draws a centred two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := max(len([]rune(line1)), len([]rune(line2))) + 4
	box := dst.Bounds().Centered(w, 5)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box, core.ColorWhite)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
