package controller

import "strings"

// LikeEscape is the escape character of patterns built by Contains. Use it as
// `col LIKE ? ESCAPE '!'`; a backslash would need engine specific quoting.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer( //nolint:gochecknoglobals
	LikeEscape, LikeEscape+LikeEscape,
	"%", LikeEscape+"%",
	"_", LikeEscape+"_",
)

// Contains returns a lower cased LIKE pattern matching s literally anywhere.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
