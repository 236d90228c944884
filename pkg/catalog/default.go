package catalog

// DefaultKeywords are the reserved words of YQL.
var DefaultKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "INNER", "LEFT", "RIGHT", "OUTER",
	"GROUP", "BY", "ORDER", "HAVING", "LIMIT", "OFFSET", "DISTINCT",
	"COUNT", "SUM", "AVG", "MIN", "MAX", "AND", "OR", "NOT", "IN",
	"LIKE", "BETWEEN", "IS", "NULL", "AS", "ON", "UNION", "ALL",
	"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE",
}

// DefaultFunctions are the built-in callable functions.
var DefaultFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "UPPER", "LOWER", "LENGTH",
	"SUBSTRING", "CONCAT", "ROUND", "FLOOR", "CEIL", "ABS", "NOW", "DATE",
}

// NFLDefinition is the sample NFL schema shipped with the editor.
func NFLDefinition() Definition {
	return Definition{
		Keywords:  cloneStrings(DefaultKeywords),
		Functions: cloneStrings(DefaultFunctions),
		Relations: []RelationDef{
			{Name: "players", Fields: []string{"player_id", "name", "team_id", "position", "jersey_number", "height", "weight", "birth_date", "college"}},
			{Name: "teams", Fields: []string{"team_id", "name", "city", "abbreviation", "conference", "division", "stadium_id"}},
			{Name: "games", Fields: []string{"game_id", "season", "week", "home_team_id", "away_team_id", "home_score", "away_score", "game_date", "stadium_id"}},
			{Name: "player_stats", Fields: []string{"stat_id", "player_id", "game_id", "passing_yards", "passing_tds", "rushing_yards", "rushing_tds", "receiving_yards", "receiving_tds", "tackles", "sacks", "interceptions"}},
			{Name: "stadiums", Fields: []string{"stadium_id", "name", "city", "state", "capacity", "surface_type", "roof_type"}},
		},
	}
}

// Default returns the built-in NFL catalog.
func Default() *Catalog {
	return MustNew(NFLDefinition())
}
