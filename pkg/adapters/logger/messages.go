package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting encode pipeline":              "エンコードパイプラインを開始します",
		"Pipeline completed successfully":       "パイプラインが正常に完了しました",
		"Output saved to %s":                    "出力を %s に保存しました",
		"Sidecar saved to %s":                   "サイドカーを %s に保存しました",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",
		"Encoded %d packets in %d ms of video":  "%d パケットをエンコードしました (動画 %d ms 分)",

		// Encoder configuration
		"Configured %d-bit %s input":            "%d ビット %s 入力を設定しました",
		"Rext profile forced for 4:2:2 and 4:4:4 input": "4:2:2 / 4:4:4 入力のため Rext プロファイルを強制します",
		"Main10 profile forced for 10-bit input": "10 ビット入力のため Main10 プロファイルを強制します",

		// Encode loop
		"Sent PTS %d":                           "PTS %d を送信しました",
		"Sent EOS":                              "EOS を送信しました",
		"Received PTS %d packet":                "PTS %d のパケットを受信しました",
		"Received EOS":                          "EOS を受信しました",
		"Received none":                         "受信なし",
		"Submitted %d frames, draining":         "%d フレームを送信済み、ドレイン中",
		"Encoded %d packets (%d bytes)":         "%d パケット (%d バイト) をエンコードしました",

		// Sinks
		"Parameter sets taken from stream header": "ストリームヘッダからパラメータセットを取得しました",
		"Muxed %d samples into MP4 (%d bytes)":  "%d サンプルを MP4 に多重化しました (%d バイト)",
		"Wrote sidecar with %d packet records":  "%d 件のパケットレコードを持つサイドカーを書き込みました",

		// Warnings
		"Abandoned metadata for PTS %d: no matching packet within look-ahead window": "PTS %d のメタデータを破棄しました: 先読みウィンドウ内に一致するパケットがありません",
		"Abandoning %d unmatched metadata entries at teardown": "終了時に未対応のメタデータ %d 件を破棄します",
		"Abandoned %d metadata entries without matching packets": "一致するパケットのないメタデータ %d 件を破棄しました",
		"Packet %d carries undecodable metadata: %s": "パケット %d のメタデータを解読できません: %s",
		"Failed to release output buffer: %s":   "出力バッファの解放に失敗しました: %s",

		// Errors
		"Encoder teardown failed: %s":           "エンコーダの終了処理に失敗しました: %s",
		"Failed to write output: %s":            "出力の書き込みに失敗しました: %s",
	})
}
