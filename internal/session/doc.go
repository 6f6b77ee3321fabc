// Package session はベンチマークセッションのライフサイクルを管理する。
//
// セッションは3つの段階からなる:
//
//  1. 接続確立: 指数バックオフ付きリトライでクラスタクライアントを構築し、
//     CLUSTER INFOでヘルス（state=ok かつ全16384スロット割り当て済み）を
//     検証する。個々のノードに到達できてもクラスタ全体が収束するまでは
//     成功としない。期限超過時は最後に観測した失敗をErrClusterUnavailableに
//     ラップして返す。
//
//  2. ワークロード実行: benchパッケージのフェーズを固定順で実行する。
//     フェーズの失敗はフェーズ境界で捕捉され、残りのフェーズと
//     レポート生成は部分的な結果で続行する。
//
//  3. クリーンアップ: 予約プレフィックス配下の全キーを削除する。
//     主戦略（SCAN + パイプラインDEL）が失敗した場合は代替戦略
//     （全列挙 + 個別DEL）に切り替える。クリーンアップと接続解放は
//     deferで保証され、成功・失敗どちらの経路でも必ず実行される。
//     クリーンアップ自身の失敗はログに記録されるだけで、
//     元の実行結果を覆い隠すことはない。
package session
