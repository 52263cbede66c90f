package nba

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/analysis"
)

const gameDateLayout = "Jan 02, 2006"

// PlayerInfo fetches biographical data for a player. A player the API does
// not know returns (nil, nil).
func (c *Client) PlayerInfo(ctx context.Context, playerID string) (*analysis.PlayerProfile, error) {
	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("LeagueID", leagueID)

	response, err := c.fetch(ctx, "commonplayerinfo", params)
	if err != nil {
		return nil, fmt.Errorf("fetching player info for %s: %w", playerID, err)
	}

	set, ok := response.resultSetByName("CommonPlayerInfo")
	if !ok || len(set.RowSet) == 0 {
		return nil, nil
	}
	r := set.rows()[0]

	return &analysis.PlayerProfile{
		PlayerID:     playerID,
		Name:         r.str("DISPLAY_FIRST_LAST"),
		Position:     analysis.NormalizePosition(r.str("POSITION")),
		Height:       r.str("HEIGHT"),
		Weight:       r.int("WEIGHT"),
		YearsPro:     r.int("SEASON_EXP"),
		College:      r.str("SCHOOL"),
		CurrentTeam:  r.str("TEAM_NAME"),
		JerseyNumber: r.int("JERSEY"),
	}, nil
}

// SeasonStats fetches a player's season averages. Missing data returns
// (nil, nil).
func (c *Client) SeasonStats(ctx context.Context, playerID, season string) (*analysis.SeasonStats, error) {
	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("Season", season)
	params.Set("SeasonType", seasonType)
	params.Set("LeagueID", leagueID)

	response, err := c.fetch(ctx, "playerdashboardbyyearoveryear", params)
	if err != nil {
		return nil, fmt.Errorf("fetching season stats for %s: %w", playerID, err)
	}

	set, ok := response.resultSetByName("ByYearPlayerDashboard")
	if !ok || len(set.RowSet) == 0 {
		return nil, nil
	}

	// Prefer the row for the requested season, fall back to the first
	rows := set.rows()
	r := rows[0]
	for _, candidate := range rows {
		if candidate.str("GROUP_VALUE") == season {
			r = candidate
			break
		}
	}

	return &analysis.SeasonStats{
		PlayerID:               playerID,
		Season:                 season,
		Team:                   r.str("TEAM_ABBREVIATION"),
		GamesPlayed:            r.int("GP"),
		GamesStarted:           r.int("GS"),
		MinutesPerGame:         r.float("MIN"),
		PointsPerGame:          r.float("PTS"),
		ReboundsPerGame:        r.float("REB"),
		AssistsPerGame:         r.float("AST"),
		StealsPerGame:          r.float("STL"),
		BlocksPerGame:          r.float("BLK"),
		TurnoversPerGame:       r.float("TOV"),
		FieldGoalPercentage:    r.float("FG_PCT"),
		ThreePointPercentage:   r.float("FG3_PCT"),
		FreeThrowPercentage:    r.float("FT_PCT"),
		PlayerEfficiencyRating: r.float("PER"),
		TrueShootingPercentage: r.float("TS_PCT"),
		UsageRate:              r.float("USG_PCT"),
	}, nil
}

// GameLog fetches a player's most recent games, newest first, capped at
// lastN.
func (c *Client) GameLog(ctx context.Context, playerID, season string, lastN int) ([]analysis.GameStats, error) {
	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("Season", season)
	params.Set("SeasonType", seasonType)
	params.Set("LeagueID", leagueID)

	response, err := c.fetch(ctx, "playergamelog", params)
	if err != nil {
		return nil, fmt.Errorf("fetching game log for %s: %w", playerID, err)
	}

	set, ok := response.resultSetByName("PlayerGameLog")
	if !ok || len(set.RowSet) == 0 {
		return []analysis.GameStats{}, nil
	}

	rows := set.rows()
	if lastN > 0 && len(rows) > lastN {
		rows = rows[:lastN]
	}

	games := make([]analysis.GameStats, 0, len(rows))
	for _, r := range rows {
		gameDate, _ := time.Parse(gameDateLayout, r.str("GAME_DATE"))

		games = append(games, analysis.GameStats{
			GameID:                 r.str("Game_ID"),
			PlayerID:               playerID,
			GameDate:               gameDate,
			Opponent:               opponentFromMatchup(r.str("MATCHUP")),
			MinutesPlayed:          r.float("MIN"),
			Points:                 r.int("PTS"),
			Rebounds:               r.int("REB"),
			Assists:                r.int("AST"),
			Steals:                 r.int("STL"),
			Blocks:                 r.int("BLK"),
			Turnovers:              r.int("TOV"),
			FieldGoalsMade:         r.int("FGM"),
			FieldGoalsAttempted:    r.int("FGA"),
			ThreePointersMade:      r.int("FG3M"),
			ThreePointersAttempted: r.int("FG3A"),
			FreeThrowsMade:         r.int("FTM"),
			FreeThrowsAttempted:    r.int("FTA"),
			PersonalFouls:          r.int("PF"),
			PlusMinus:              r.intPtr("PLUS_MINUS"),
		})
	}

	return games, nil
}

// opponentFromMatchup extracts the opponent from a matchup string like
// "LAL vs. BOS" or "LAL @ GSW"
func opponentFromMatchup(matchup string) string {
	fields := strings.Fields(matchup)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// LeagueLeader is one row from the league leaders board.
type LeagueLeader struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	StatValue  float64 `json:"stat_value"`
	Rank       int     `json:"rank"`
}

// LeagueLeaders fetches the top players for a stat category.
func (c *Client) LeagueLeaders(ctx context.Context, statCategory, season string, limit int) ([]LeagueLeader, error) {
	params := url.Values{}
	params.Set("LeagueID", leagueID)
	params.Set("Season", season)
	params.Set("SeasonType", seasonType)
	params.Set("StatCategory", statCategory)
	params.Set("Scope", "S")
	params.Set("PlayerOrTeam", "Player")
	params.Set("PlayerScope", "All Players")

	response, err := c.fetch(ctx, "leagueleaders", params)
	if err != nil {
		return nil, fmt.Errorf("fetching league leaders for %s: %w", statCategory, err)
	}

	set, ok := response.resultSetByName("")
	if !ok || len(set.RowSet) == 0 {
		return []LeagueLeader{}, nil
	}

	rows := set.rows()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	leaders := make([]LeagueLeader, 0, len(rows))
	for _, r := range rows {
		leaders = append(leaders, LeagueLeader{
			PlayerID:   r.str("PLAYER_ID"),
			PlayerName: r.str("PLAYER"),
			Team:       r.str("TEAM"),
			StatValue:  r.float(statCategory),
			Rank:       r.int("RANK"),
		})
	}

	return leaders, nil
}

// PlayerSummary is a search hit from the all-players directory.
type PlayerSummary struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
	IsActive bool   `json:"is_active"`
}

const maxSearchResults = 20

// SearchPlayers matches current-season players by name substring,
// case-insensitive, capped at 20 results.
func (c *Client) SearchPlayers(ctx context.Context, query, season string) ([]PlayerSummary, error) {
	params := url.Values{}
	params.Set("LeagueID", leagueID)
	params.Set("Season", season)
	params.Set("IsOnlyCurrentSeason", "1")

	response, err := c.fetch(ctx, "commonallplayers", params)
	if err != nil {
		return nil, fmt.Errorf("searching players for %q: %w", query, err)
	}

	set, ok := response.resultSetByName("CommonAllPlayers")
	if !ok || len(set.RowSet) == 0 {
		return []PlayerSummary{}, nil
	}

	queryLower := strings.ToLower(query)
	matches := []PlayerSummary{}
	for _, r := range set.rows() {
		name := r.str("DISPLAY_FIRST_LAST")
		if !strings.Contains(strings.ToLower(name), queryLower) {
			continue
		}
		matches = append(matches, PlayerSummary{
			PlayerID: r.str("PERSON_ID"),
			Name:     name,
			TeamID:   r.str("TEAM_ID"),
			IsActive: r.int("ROSTERSTATUS") == 1,
		})
		if len(matches) == maxSearchResults {
			break
		}
	}

	return matches, nil
}
