package testutil

import (
	"keibacli/pkg/contracts/domain"
)

// RaceCardColumns is the header of the RaceCard fixture
var RaceCardColumns = []string{
	"race_id", "race_date", "horse_number", "horse_name", "gender", "age",
	"track_name", "distance", "field_size", "horse_weight", "weight_carried",
	"odds", "finishing_position", "raw_finishing_position",
	"last_race_date", "last_race_position", "last_race_popularity",
	"last_race_field_size", "last_race_distance", "last_race_track",
	"last_race_corner3", "last_race_corner4", "last_race_final_furlong_rank",
	"class_name", "last_race_class", "speed_index_last",
}

// raceCardRows are raw text cells the way the loaders produce them.
// Race R1 has four runners, race R2 three.
var raceCardRows = [][]string{
	{"R1", "2024-05-26", "1", "Alpha", "牡", "3", "東京", "2400", "4", "480", "57", "2.4", "1", "1",
		"2024-04-14", "２", "1", "18", "2000", "中山", "3", "2", "1", "G1", "G2", "98.5"},
	{"R1", "2024-05-26", "2", "Bravo", "牝", "3", "東京", "2400", "4", "452", "55", "8.1", "2", "2",
		"2024-04-14", "5", "3", "18", "2000", "中山", "7", "6", "4", "G1", "G2", "92.0"},
	{"R1", "2024-05-26", "3", "Charlie", "牡", "4", "東京", "2400", "4", "502", "57", "15.3", "3", "3",
		"2024-03-30", "1", "4", "12", "2200", "阪神", "0", "", "2", "G1", "G3", "95.1"},
	{"R1", "2024-05-26", "4", "Delta", "セ", "5", "東京", "2400", "4", "468", "57", "30.2", "4", "4",
		"2024-04-21", "取消", "9", "16", "1800", "東京", "", "", "", "G1", "OP", "88.7"},
	{"R2", "2024-05-26", "1", "Echo", "牝", "2", "京都", "1200", "3", "430", "54", "3.1", "2", "2",
		"2024-05-05", "3", "2", "10", "1200", "京都", "4", "4", "3", "1勝", "新馬", "80.0"},
	{"R2", "2024-05-26", "2", "Foxtrot", "牡", "2", "京都", "1200", "3", "446", "55", "1.8", "1", "1",
		"2024-05-05", "1", "1", "10", "1400", "京都", "1", "1", "1", "1勝", "新馬", "84.2"},
	{"R2", "2024-05-26", "3", "Golf", "牡", "2", "京都", "1200", "3", "470", "55", "12.0", "3", "3",
		"2024-04-28", "6", "5", "14", "1200", "阪神", "9", "8", "7", "1勝", "新馬", "77.3"},
}

// RaceCard returns a fresh raw race record table with two races. Every row
// survives cleaning with the default rules.
func RaceCard() *domain.Table {
	table := domain.NewTable(RaceCardColumns...)
	for _, raw := range raceCardRows {
		row := make(domain.Row, len(raw))
		for i, cell := range raw {
			if cell == "" {
				continue
			}
			row[RaceCardColumns[i]] = domain.Text(cell)
		}
		table.AppendRow(row)
	}
	return table
}
