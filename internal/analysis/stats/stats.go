package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
)

// ErrEmptyDataset is returned when an aggregate has no values to work with.
var ErrEmptyDataset = errors.New("no passenger records to aggregate")

const (
	// HistogramBins is the fixed bin count of the age histogram.
	HistogramBins = 20

	HistogramTitle  = "Distribution of Passenger Ages"
	HistogramXLabel = "Age"
	HistogramYLabel = "Count"
)

// Bin is one equal-width bucket of a Histogram. Lower is inclusive; Upper is
// exclusive except for the last bin.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a renderable chart description.
type Histogram struct {
	Title  string `json:"title"`
	XLabel string `json:"xLabel"`
	YLabel string `json:"yLabel"`
	Bins   []Bin  `json:"bins"`
}

// Total returns the number of values counted across all bins.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// PortCount is the number of passengers who boarded at Port.
type PortCount struct {
	Port  string `json:"port"`
	Count int    `json:"count"`
}

// MalePercentage returns the share of passengers whose sex is "male", in [0, 100].
func MalePercentage(t *passenger.Table) (float64, error) {
	total := t.Len()
	if total == 0 {
		return 0, ErrEmptyDataset
	}

	male := 0
	for i := 0; i < total; i++ {
		if t.At(i).Sex == "male" {
			male++
		}
	}
	return float64(male) / float64(total) * 100, nil
}

// FormatMalePercentage renders the answer sentence with one decimal place.
func FormatMalePercentage(pct float64) string {
	return fmt.Sprintf("Approximately %.1f%% of passengers were male.", pct)
}

// AgeHistogram buckets the known ages into HistogramBins equal-width bins
// spanning [min, max].
func AgeHistogram(t *passenger.Table) (Histogram, error) {
	ages := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if age := t.At(i).Age; age != nil && !math.IsNaN(*age) {
			ages = append(ages, *age)
		}
	}
	if len(ages) == 0 {
		return Histogram{}, ErrEmptyDataset
	}

	return Histogram{
		Title:  HistogramTitle,
		XLabel: HistogramXLabel,
		YLabel: HistogramYLabel,
		Bins:   bucket(ages, HistogramBins),
	}, nil
}

func bucket(values []float64, n int) []Bin {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// AverageFare is the mean of the known fares; missing fares are left out of
// both the sum and the count.
func AverageFare(t *passenger.Table) (float64, error) {
	var (
		sum   float64
		count int
	)
	for i := 0; i < t.Len(); i++ {
		if fare := t.At(i).Fare; fare != nil && !math.IsNaN(*fare) {
			sum += *fare
			count++
		}
	}
	if count == 0 {
		return 0, ErrEmptyDataset
	}
	return sum / float64(count), nil
}

// FormatAverageFare renders the answer sentence with two decimal places.
func FormatAverageFare(avg float64) string {
	return fmt.Sprintf("The average ticket fare was £%.2f.", avg)
}

// EmbarkationCounts counts passengers per known port, largest first. Ports
// with equal counts keep the order in which they first appear in the table.
func EmbarkationCounts(t *passenger.Table) ([]PortCount, error) {
	counts := make([]PortCount, 0, 4)
	position := make(map[string]int)

	for i := 0; i < t.Len(); i++ {
		port := t.At(i).Embarked
		if port == "" {
			continue
		}
		idx, ok := position[port]
		if !ok {
			idx = len(counts)
			position[port] = idx
			counts = append(counts, PortCount{Port: port})
		}
		counts[idx].Count++
	}
	if len(counts) == 0 {
		return nil, ErrEmptyDataset
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

// FormatEmbarkationCounts renders one "- PORT: N passengers" line per port.
func FormatEmbarkationCounts(counts []PortCount) string {
	var b strings.Builder
	b.WriteString("Passengers embarked from these ports:\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "- %s: %d passengers\n", c.Port, c.Count)
	}
	return b.String()
}
