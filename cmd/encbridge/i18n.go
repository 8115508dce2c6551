// Package main provides localization for the encbridge CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Encode raw video to HEVC with frame metadata carried through the encoder.": "フレームメタデータをエンコーダに通しながら生動画をHEVCにエンコードします。",

		// Encode command
		"Encode raw YUV input, or a built-in test pattern, to HEVC.": "生YUV入力または内蔵テストパターンをHEVCにエンコード",
		"Raw YUV input file (omit to encode the built-in test pattern).": "生YUV入力ファイル（省略時は内蔵テストパターンをエンコード）",
		"Output file path (.mp4 for a container, anything else for a raw stream).": "出力ファイルパス（.mp4はコンテナ、それ以外は生ストリーム）",
		"YAML configuration file.": "YAML設定ファイル",

		// Picture flags
		"Picture width in pixels.":  "ピクチャ幅（ピクセル）",
		"Picture height in pixels.": "ピクチャ高さ（ピクセル）",
		"Input pixel format (yuv420p, yuv420p10le, yuv422p, yuv422p10le, yuv444p, yuv444p10le).": "入力ピクセルフォーマット（yuv420p, yuv420p10le, yuv422p, yuv422p10le, yuv444p, yuv444p10le）",
		"Frame rate numerator.":   "フレームレートの分子",
		"Frame rate denominator.": "フレームレートの分母",

		// Encoder flags
		"HEVC profile (main, main10, rext).":          "HEVCプロファイル（main, main10, rext）",
		"Encoder preset (0-12, higher is faster).":    "エンコーダプリセット（0-12、大きいほど高速）",
		"QP value for intra frames (0-51).":           "イントラフレームのQP値（0-51）",
		"Rate control mode (cqp, vbr).":               "レート制御モード（cqp, vbr）",
		"Target bitrate in bits/sec (vbr only).":      "目標ビットレート（bits/秒、vbrのみ）",
		"GOP size (0 = encoder default).":             "GOPサイズ（0 = エンコーダのデフォルト）",
		"Look ahead distance (-1 = encoder default).": "先読み距離（-1 = エンコーダのデフォルト）",
		"Disable scene change detection.":             "シーンチェンジ検出を無効化",
		"Quality tuning mode (0 = sq, 1 = oq, 2 = vmaf).": "品質チューニングモード（0 = sq, 1 = oq, 2 = vmaf）",
		"Emit VPS/SPS/PPS out of band instead of in the stream.": "VPS/SPS/PPSをストリーム内でなく帯域外に出力",

		// Sidecar / pattern flags
		"Write a JSON packet/metadata sidecar to this path (raw output only).": "JSONパケット/メタデータのサイドカーをこのパスに書き込み（生出力のみ）",
		"Frame count for the built-in test pattern.": "内蔵テストパターンのフレーム数",

		// Logging flags
		"Log level (debug, info, warn, error).": "ログレベル（debug, info, warn, error）",
		"Suppress all log output.":              "全てのログ出力を抑制",

		// Version command
		"Show version information.": "バージョン情報を表示",
		"encbridge version %s":      "encbridge バージョン %s",

		// Runtime messages
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Summary output flag
		"Write an execution summary to this path (Markdown format).": "実行サマリーをこのパスに書き込み（Markdown形式）",
		"Summary saved to %s":          "サマリーを %s に保存しました",
		"Failed to write summary: %s":  "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Encode Summary":   "エンコードサマリー",
		"Generated":        "生成日時",
		"Session":          "セッション",
		"Session ID":       "セッションID",
		"Input":            "入力",
		"Output":           "出力",
		"Sidecar":          "サイドカー",
		"Test pattern":     "テストパターン",
		"None":             "なし",
		"Item":             "項目",
		"Value":            "値",
		"Picture Size":     "ピクチャサイズ",
		"Pixel Format":     "ピクセルフォーマット",
		"Frame Rate":       "フレームレート",
		"Frame Count":      "フレーム数",
		"Encoder":          "エンコーダ",
		"Profile":          "プロファイル",
		"Preset":           "プリセット",
		"Rate Control":     "レート制御",
		"QP":               "QP値",
		"Bitrate":          "ビットレート",
		"GOP Size":         "GOPサイズ",
		"Look Ahead":       "先読み距離",
		"Encoder default":  "エンコーダのデフォルト",
		"Packets":          "パケット数",
		"Keyframes":        "キーフレーム数",
		"Stream Size":      "ストリームサイズ",
		"File Size":        "ファイルサイズ",
		"Video Duration":   "動画再生時間",
		"Metadata Matched": "メタデータ一致数",
		"abandoned":        "破棄",
	})
}
