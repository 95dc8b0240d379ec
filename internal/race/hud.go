package race

import "fmt"

// HUDLines is the text shown in the top-left corner.
func HUDLines(s *Session) []string {
	w := s.World()
	pair, res := s.Last()

	lines := []string{
		fmt.Sprintf("SCORE %d  BEST %d", w.Score(), s.Best()),
		fmt.Sprintf("SPEED %.1f", w.Speed),
		fmt.Sprintf("L: %s | R: %s", pair.Left, pair.Right),
		fmt.Sprintf("ACTION: %s", res.Action),
	}
	if r := s.Result(); r != nil {
		over := fmt.Sprintf("GAME OVER  score %d", r.Score)
		if r.NewRecord {
			over += "  NEW RECORD"
		}
		lines = append(lines, over, "two fingers on both hands or SPACE to restart")
	}
	return lines
}
