package scan

import "slices"

// Preset は用途別のスキャン条件
type Preset struct {
	Name        string
	Description string
	Filter      string
	MinSize     int64
	SkipHidden  bool
}

// Apply はプリセットの条件を cfg に適用する
// cfg 側で既にフィルタが指定されている場合は両方を満たす必要がある
func (p Preset) Apply(cfg Config) Config {
	switch {
	case p.Filter == "":
	case cfg.Filter == "":
		cfg.Filter = p.Filter
	default:
		cfg.Filter = "(" + p.Filter + ") && (" + cfg.Filter + ")"
	}
	if p.MinSize > cfg.MinSize {
		cfg.MinSize = p.MinSize
	}
	cfg.SkipHidden = cfg.SkipHidden || p.SkipHidden
	return cfg
}

var presets = []Preset{
	{
		Name:        "all",
		Description: "全ファイルを対象にする（デフォルト）",
	},
	{
		Name:        "media",
		Description: "画像・動画・音声ファイル",
		Filter:      `/^\.(jpe?g|png|gif|heic|webp|bmp|tiff?|raw|mp4|mov|avi|mkv|mp3|flac|wav|m4a)$/.test(ext)`,
		SkipHidden:  true,
	},
	{
		Name:        "documents",
		Description: "PDF・Office・テキスト文書",
		Filter:      `/^\.(pdf|docx?|xlsx?|pptx?|odt|ods|txt|md|rtf|csv)$/.test(ext)`,
		SkipHidden:  true,
	},
	{
		Name:        "large",
		Description: "1 MiB 以上のファイルのみ",
		MinSize:     1 << 20,
	},
	{
		Name:        "clean",
		Description: "隠しファイルと空ファイル、VCS/依存ディレクトリを除外",
		Filter:      `!/\/(node_modules|vendor|\.git)\//.test(path)`,
		MinSize:     1,
		SkipHidden:  true,
	},
}

// GetPreset は名前からプリセットを取得する
func GetPreset(name string) (Preset, bool) {
	i := slices.IndexFunc(presets, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return Preset{}, false
	}
	return presets[i], true
}

// ListPresets は利用可能なプリセットを返す
func ListPresets() []Preset {
	return slices.Clone(presets)
}
