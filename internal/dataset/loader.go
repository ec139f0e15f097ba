package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
)

// ErrDataUnavailable is returned when the manifest cannot be read or parsed.
var ErrDataUnavailable = errors.New("passenger data unavailable")

// Column names of the Kaggle train.csv layout.
const (
	ColumnID       = "PassengerId"
	ColumnSurvived = "Survived"
	ColumnPclass   = "Pclass"
	ColumnName     = "Name"
	ColumnSex      = "Sex"
	ColumnAge      = "Age"
	ColumnSibSp    = "SibSp"
	ColumnParch    = "Parch"
	ColumnTicket   = "Ticket"
	ColumnFare     = "Fare"
	ColumnCabin    = "Cabin"
	ColumnEmbarked = "Embarked"
)

var requiredColumns = []string{ColumnSex, ColumnAge, ColumnFare, ColumnEmbarked}

// Load reads the CSV manifest at path.
func Load(path string) (*passenger.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse builds a Table from CSV content. The header row must contain the
// Sex, Age, Fare and Embarked columns; other known columns are optional.
func Parse(r io.Reader) (*passenger.Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrDataUnavailable, err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataUnavailable, col)
		}
	}

	rows := make([]passenger.Passenger, 0, 1024)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDataUnavailable, line, err)
		}
		rows = append(rows, decodeRow(record, index))
	}

	return passenger.NewTable(rows), nil
}

func decodeRow(record []string, index map[string]int) passenger.Passenger {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	return passenger.Passenger{
		ID:       parseInt(field(ColumnID)),
		Survived: field(ColumnSurvived) == "1",
		Pclass:   parseInt(field(ColumnPclass)),
		Name:     field(ColumnName),
		Sex:      field(ColumnSex),
		Age:      parseOptionalFloat(field(ColumnAge)),
		SibSp:    parseInt(field(ColumnSibSp)),
		Parch:    parseInt(field(ColumnParch)),
		Ticket:   field(ColumnTicket),
		Fare:     parseOptionalFloat(field(ColumnFare)),
		Cabin:    field(ColumnCabin),
		Embarked: field(ColumnEmbarked),
	}
}

// parseOptionalFloat treats blank and non-numeric cells as missing.
func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &val
}

func parseInt(raw string) int {
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return val
}

// Loader memoizes a single Load of path.
type Loader struct {
	path  string
	once  sync.Once
	table *passenger.Table
	err   error
}

// NewLoader returns a Loader for the manifest at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the manifest on the first call; later calls return the same
// table instance (or the same error) without touching the file again.
func (l *Loader) Load() (*passenger.Table, error) {
	l.once.Do(func() {
		l.table, l.err = Load(l.path)
	})
	return l.table, l.err
}
