// Package themes holds the static catalog of round themes. Themes are
// reference data: picked once at game creation and never mutated.
package themes

import (
	"math/rand/v2"

	"github.com/sai-kaneko-31/ito/domain"
)

var catalog = []domain.Theme{
	{
		ID:          "temperature-hot-cold",
		Name:        "暑いもの・冷たいもの",
		Description: "温度に関するお題です",
		Examples:    domain.ThemeExamples{Low: "氷", High: "太陽"},
		Category:    "temperature",
	},
	{
		ID:          "size-big-small",
		Name:        "大きいもの・小さいもの",
		Description: "サイズに関するお題です",
		Examples:    domain.ThemeExamples{Low: "アリ", High: "ゾウ"},
		Category:    "size",
	},
	{
		ID:          "speed-fast-slow",
		Name:        "速いもの・遅いもの",
		Description: "スピードに関するお題です",
		Examples:    domain.ThemeExamples{Low: "カタツムリ", High: "新幹線"},
		Category:    "speed",
	},
	{
		ID:          "weight-heavy-light",
		Name:        "重いもの・軽いもの",
		Description: "重さに関するお題です",
		Examples:    domain.ThemeExamples{Low: "羽毛", High: "車"},
		Category:    "weight",
	},
	{
		ID:          "height-tall-short",
		Name:        "高いもの・低いもの",
		Description: "高さに関するお題です",
		Examples:    domain.ThemeExamples{Low: "芝生", High: "スカイツリー"},
		Category:    "height",
	},
	{
		ID:          "age-old-young",
		Name:        "古いもの・新しいもの",
		Description: "年代に関するお題です",
		Examples:    domain.ThemeExamples{Low: "今日のニュース", High: "恐竜"},
		Category:    "age",
	},
	{
		ID:          "difficulty-hard-easy",
		Name:        "難しいこと・簡単なこと",
		Description: "難易度に関するお題です",
		Examples:    domain.ThemeExamples{Low: "歩く", High: "宇宙旅行"},
		Category:    "difficulty",
	},
	{
		ID:          "popularity-famous-unknown",
		Name:        "有名なもの・無名なもの",
		Description: "知名度に関するお題です",
		Examples:    domain.ThemeExamples{Low: "隣の家の犬", High: "ピカチュウ"},
		Category:    "popularity",
	},
	{
		ID:          "distance-far-near",
		Name:        "遠いもの・近いもの",
		Description: "距離に関するお題です",
		Examples:    domain.ThemeExamples{Low: "目の前", High: "月"},
		Category:    "size",
	},
	{
		ID:          "brightness-bright-dark",
		Name:        "明るいもの・暗いもの",
		Description: "明るさに関するお題です",
		Examples:    domain.ThemeExamples{Low: "洞窟", High: "電球"},
		Category:    "temperature",
	},
}

func All() []domain.Theme {
	out := make([]domain.Theme, len(catalog))
	copy(out, catalog)
	return out
}

func Random() domain.Theme {
	return catalog[rand.IntN(len(catalog))]
}

func ByID(id string) (domain.Theme, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Theme{}, domain.ErrThemeNotFound
}
