package services

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/jdlive/kteval/internal/catalog"
)

// utf8BOM keeps the Chinese headers readable when the CSV is opened in Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportSKUDetailCSV renders the SKU detail rows as a CSV document with one
// column per catalog issue kind.
func ExportSKUDetailCSV(rows []SKUDetailRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)
	header := []string{"SKU名称", "直播间", "价格", "评测次数", "视频合格率", "KT板合格率", "总KT板出现次数"}
	for _, kind := range catalog.IssueKinds() {
		header = append(header, kind.Label)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := []string{
			row.Name,
			row.RoomName,
			strconv.Itoa(row.Price),
			strconv.Itoa(row.EvalCount),
			row.VideoQualifiedRate,
			row.VisualQualifiedRate,
			strconv.Itoa(row.TotalBoardCount),
		}
		for _, kind := range catalog.IssueKinds() {
			rec = append(rec, strconv.Itoa(row.Issues[kind.ID]))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
