// Package config loads extractor settings from YAML.
//
// Values not present in the file keep the defaults from Default, which match
// the JTA veterans tennis result sheets (16-draw brackets, 登録No/Seed/Name header,
// 優勝/準優勝/ベスト4/ベスト8 point table).
package config
