package bench

import "strings"

// Entry はひとつのベンチマーク結果
type Entry struct {
	Label string  // 操作ラベル
	Value float64 // ops/sec または MB/sec
}

// IsMB はMB/sec系の結果かどうかを返す
func (e Entry) IsMB() bool {
	return strings.Contains(e.Label, "MB/s")
}

// ResultSet はラベルからメトリクスへの順序付きマッピング
// 挿入順 = 実行順で、そのままレポートとチャートに使われる
type ResultSet struct {
	entries []Entry
}

// NewResultSet は空のResultSetを作成する
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Add は結果を末尾に追加する。既存ラベルは上書きされる
func (rs *ResultSet) Add(label string, value float64) {
	for i := range rs.entries {
		if rs.entries[i].Label == label {
			rs.entries[i].Value = value
			return
		}
	}
	rs.entries = append(rs.entries, Entry{Label: label, Value: value})
}

// Get はラベルの値を返す
func (rs *ResultSet) Get(label string) (float64, bool) {
	for _, e := range rs.entries {
		if e.Label == label {
			return e.Value, true
		}
	}
	return 0, false
}

// Entries は挿入順の全エントリを返す
func (rs *ResultSet) Entries() []Entry {
	out := make([]Entry, len(rs.entries))
	copy(out, rs.entries)
	return out
}

// Len はエントリ数を返す
func (rs *ResultSet) Len() int {
	return len(rs.entries)
}

// Split はops/sec系とMB/sec系に分割する
func (rs *ResultSet) Split() (ops, mb *ResultSet) {
	ops = NewResultSet()
	mb = NewResultSet()
	for _, e := range rs.entries {
		if e.IsMB() {
			mb.Add(e.Label, e.Value)
		} else {
			ops.Add(e.Label, e.Value)
		}
	}
	return ops, mb
}
