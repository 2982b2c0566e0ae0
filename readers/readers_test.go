//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of GoXform.
//
// GoXform is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoXform is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoXform. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aaronlmathis/goxform/core"
)

func readAll(t *testing.T, src core.DataSource) core.Dataset {
	t.Helper()
	data, err := LoadDataset(context.Background(), src, 0)
	require.NoError(t, err)
	return data
}

// TestCSVReader_InfersTypes tests numeric, boolean and empty cell handling
func TestCSVReader_InfersTypes(t *testing.T) {
	in := "name,age,active,score\nAlice,25,true,1.5\nBob,,false,NaN\n"
	r, err := NewCSVReader(io.NopCloser(strings.NewReader(in)))
	require.NoError(t, err)

	data := readAll(t, r)
	require.Len(t, data, 2)
	assert.Equal(t, core.Record{"name": "Alice", "age": int64(25), "active": true, "score": 1.5}, data[0])
	assert.Equal(t, core.Record{"name": "Bob", "age": nil, "active": false, "score": nil}, data[1])
	assert.Equal(t, int64(1), r.Stats().NullValueCounts["age"])
	assert.Equal(t, int64(2), r.Stats().RecordsRead)
}

// TestCSVReader_Options tests delimiter, header and inference options
func TestCSVReader_Options(t *testing.T) {
	r, err := NewCSVReader(io.NopCloser(strings.NewReader("1;x\n2;y\n")),
		WithCSVComma(';'), WithCSVHasHeaders(false), WithCSVInferTypes(false))
	require.NoError(t, err)
	data := readAll(t, r)
	assert.Equal(t, core.Dataset{{"col_0": "1", "col_1": "x"}, {"col_0": "2", "col_1": "y"}}, data)

	r, err = NewCSVReader(io.NopCloser(strings.NewReader(" Región ,Café\nN,1\n")), WithCSVNormalizeHeaders(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Cafe"}, r.Headers())
}

// TestCSVReader_Errors tests empty input and ragged rows
func TestCSVReader_Errors(t *testing.T) {
	_, err := NewCSVReader(io.NopCloser(strings.NewReader("")))
	var re *ReaderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "read_headers", re.Op)

	r, err := NewCSVReader(io.NopCloser(strings.NewReader("a,b\n1\n")))
	require.NoError(t, err)
	_, err = r.Read(context.Background())
	assert.Error(t, err)
}

// TestJSONReader_ArrayAndLines tests both accepted JSON layouts
func TestJSONReader_ArrayAndLines(t *testing.T) {
	array := `  [{"region": "North", "sales": 100}, {"region": "South", "sales": 2.5, "tags": ["a"]}]`
	data := readAll(t, NewJSONReader(io.NopCloser(strings.NewReader(array))))
	require.Len(t, data, 2)
	assert.Equal(t, int64(100), data[0]["sales"])
	assert.Equal(t, 2.5, data[1]["sales"])
	assert.Equal(t, `["a"]`, data[1]["tags"])

	lines := "{\"v\": 1}\n{\"v\": null}\n\n{\"v\": true}\n"
	data = readAll(t, NewJSONReader(io.NopCloser(strings.NewReader(lines))))
	assert.Equal(t, core.Dataset{{"v": int64(1)}, {"v": nil}, {"v": true}}, data)

	empty := readAll(t, NewJSONReader(io.NopCloser(strings.NewReader("[]"))))
	assert.Empty(t, empty)
}

// TestJSONReader_Malformed tests decode errors
func TestJSONReader_Malformed(t *testing.T) {
	r := NewJSONReader(io.NopCloser(strings.NewReader(`[{"v": 1}, {"v": }]`)))
	_, err := r.Read(context.Background())
	require.NoError(t, err)
	_, err = r.Read(context.Background())
	var re *ReaderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "decode", re.Op)
}

// TestXLSXReader tests reading the first worksheet of a workbook
func TestXLSXReader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"region", "sales"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"North", 100}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"South"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	r, err := NewXLSXReader(io.NopCloser(buf))
	require.NoError(t, err)
	assert.Equal(t, sheet, r.Sheet())

	data := readAll(t, r)
	assert.Equal(t, core.Dataset{
		{"region": "North", "sales": int64(100)},
		{"region": "South", "sales": nil},
	}, data)
}

// TestSQLReader_SQLite tests streaming query results through database/sql
func TestSQLReader_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")
	db, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE sales (region TEXT, amount REAL, units INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sales VALUES ('North', 100.5, 3), ('South', NULL, 4)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()
	r, err := NewSQLReader(ctx,
		WithSQLDriver(DriverSQLite, path),
		WithSQLQuery(`SELECT region, amount, units FROM sales WHERE units > ? ORDER BY region`, 0),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "amount", "units"}, r.Columns())

	data := readAll(t, r)
	require.Len(t, data, 2)
	assert.Equal(t, "North", data[0]["region"])
	assert.Equal(t, 100.5, data[0]["amount"])
	assert.Equal(t, int64(3), data[0]["units"])
	assert.Nil(t, data[1]["amount"])
}

// TestSQLReader_Validation tests required options
func TestSQLReader_Validation(t *testing.T) {
	_, err := NewSQLReader(context.Background(), WithSQLQuery("SELECT 1"))
	assert.Error(t, err)

	_, err = NewSQLReader(context.Background(), WithSQLDriver(DriverSQLite, filepath.Join(t.TempDir(), "x.db")))
	var re *ReaderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "validate", re.Op)
}

// TestDriverDSN tests database URL conversion
func TestDriverDSN(t *testing.T) {
	driver, dsn, err := DriverDSN("postgres://u:p@localhost:5432/shop?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/shop?sslmode=disable", dsn)

	driver, dsn, err = DriverDSN("mysql://root:secret@db:3306/shop")
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, driver)
	assert.True(t, strings.HasPrefix(dsn, "root:secret@tcp(db:3306)/shop"))

	driver, dsn, err = DriverDSN("sqlite:///tmp/data.db")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, driver)
	assert.Equal(t, "/tmp/data.db", dsn)

	_, _, err = DriverDSN("oracle://x")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

// TestS3Reader_Prefix tests reading every supported object under a prefix in key order
func TestS3Reader_Prefix(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"in/b.jsonl":   "{\"v\": 3}\n",
		"in/a.csv":     "v\n1\n2\n",
		"in/notes.txt": "ignored",
		"other/c.csv":  "v\n9\n",
	}}

	r, err := NewS3Reader(context.Background(), client, "bucket", "in/")
	require.NoError(t, err)
	assert.Equal(t, []string{"in/a.csv", "in/b.jsonl"}, r.Keys())

	data := readAll(t, r)
	assert.Equal(t, core.Dataset{{"v": int64(1)}, {"v": int64(2)}, {"v": int64(3)}}, data)
	assert.Equal(t, int64(2), r.Stats().ObjectsRead)
}

// TestS3Reader_MissingObject tests that fetch errors surface on Read
func TestS3Reader_MissingObject(t *testing.T) {
	r, err := NewS3Reader(context.Background(), &fakeS3{objects: map[string]string{}}, "bucket", "missing.csv")
	require.NoError(t, err)
	_, err = r.Read(context.Background())
	var re *ReaderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "get_object", re.Op)
}

// TestLoadDataset_Limit tests the record cap and cancellation
func TestLoadDataset_Limit(t *testing.T) {
	src := NewJSONReader(io.NopCloser(strings.NewReader(`[{"v":1},{"v":2},{"v":3}]`)))
	_, err := LoadDataset(context.Background(), src, 2)
	assert.EqualError(t, err, "dataset exceeds 2 records")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src = NewJSONReader(io.NopCloser(strings.NewReader(`[{"v":1}]`)))
	_, err = LoadDataset(ctx, src, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestOpenFile_UnknownExtension tests format detection failures
func TestOpenFile_UnknownExtension(t *testing.T) {
	_, err := OpenFile("data.txt")
	assert.Error(t, err)
}
