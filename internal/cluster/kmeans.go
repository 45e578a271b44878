// Package cluster segments stores into behavioral clusters from static
// attributes. The segmentation depends only on the store catalog, never on a
// workflow's forecast, so one fitted model can serve every concurrent
// workflow read-only.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/trimline/seasonplan/internal/models"
)

// ErrTooFewStores means the catalog has fewer stores than requested clusters.
var ErrTooFewStores = errors.New("fewer stores than clusters")

const (
	defaultClusters = 3
	maxIterations   = 100
	randomSeed      = 7 // fixed so assignments are reproducible run to run
)

// tierNames orders labels from strongest to weakest selling cluster.
var tierNames = []string{"Premium", "Mainline", "Value"}

// Segmenter runs k-means over normalized store features and labels each
// cluster with an interpretable tier name derived from member sales.
type Segmenter struct {
	k int

	mu     sync.RWMutex
	cached []models.ClusterAssignment
	prints string
}

// NewSegmenter builds a Segmenter with k clusters (default 3 when k <= 0).
func NewSegmenter(k int) *Segmenter {
	if k <= 0 {
		k = defaultClusters
	}
	return &Segmenter{k: k}
}

// Assign clusters every store exactly once. Results are cached per catalog
// fingerprint: repeated calls with an unchanged catalog return the cached
// assignment without refitting.
func (s *Segmenter) Assign(stores []models.StoreProfile) ([]models.ClusterAssignment, error) {
	if len(stores) < s.k {
		return nil, fmt.Errorf("%w: %d stores, %d clusters", ErrTooFewStores, len(stores), s.k)
	}

	print := fingerprint(stores)
	s.mu.RLock()
	if s.prints == print && s.cached != nil {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	features := normalize(featureMatrix(stores))
	members := kmeans(features, s.k)
	labels := tierLabels(stores, members, s.k)

	out := make([]models.ClusterAssignment, len(stores))
	for i := range stores {
		out[i] = models.ClusterAssignment{
			StoreID:   stores[i].ID,
			ClusterID: members[i],
			TierLabel: labels[members[i]],
		}
	}

	s.mu.Lock()
	s.cached = out
	s.prints = print
	s.mu.Unlock()
	return out, nil
}

func fingerprint(stores []models.StoreProfile) string {
	ids := make([]string, len(stores))
	for i, st := range stores {
		ids[i] = fmt.Sprintf("%s|%.1f|%s|%.1f", st.ID, st.SizeSqFt, st.IncomeTier, st.AvgWeeklySales)
	}
	sort.Strings(ids)
	return fmt.Sprint(ids)
}

// featureMatrix keeps the numeric attributes: size, income rank, average
// weekly sales. Region and format stay descriptive labels.
func featureMatrix(stores []models.StoreProfile) [][]float64 {
	rows := make([][]float64, len(stores))
	for i, st := range stores {
		rows[i] = []float64{st.SizeSqFt, st.IncomeTier.Rank(), st.AvgWeeklySales}
	}
	return rows
}

// normalize z-scores each column so no single attribute dominates distance.
func normalize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	cols := len(rows[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for _, r := range rows {
			means[c] += r[c]
		}
		means[c] /= float64(len(rows))
		for _, r := range rows {
			d := r[c] - means[c]
			stds[c] += d * d
		}
		stds[c] = math.Sqrt(stds[c] / float64(len(rows)))
		if stds[c] == 0 {
			stds[c] = 1
		}
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			out[i][c] = (r[c] - means[c]) / stds[c]
		}
	}
	return out
}

// kmeans partitions rows into k clusters. Initialization picks spread-out
// seeds (k-means++ style) from a fixed-seed generator, so the partition is
// deterministic for a given catalog.
func kmeans(rows [][]float64, k int) []int {
	rng := rand.New(rand.NewSource(randomSeed))
	centroids := seedCentroids(rows, k, rng)
	members := make([]int, len(rows))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range rows {
			best := 0
			bestDist := distSq(row, centroids[0])
			for c := 1; c < k; c++ {
				if d := distSq(row, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if members[i] != best {
				members[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		recenter(rows, members, centroids)
	}
	return members
}

func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.Intn(len(rows))
	centroids = append(centroids, append([]float64(nil), rows[first]...))
	for len(centroids) < k {
		// Pick the row farthest from its nearest existing centroid.
		bestIdx, bestDist := 0, -1.0
		for i, row := range rows {
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := distSq(row, c); d < nearest {
					nearest = d
				}
			}
			if nearest > bestDist {
				bestIdx, bestDist = i, nearest
			}
		}
		centroids = append(centroids, append([]float64(nil), rows[bestIdx]...))
	}
	return centroids
}

func recenter(rows [][]float64, members []int, centroids [][]float64) {
	k := len(centroids)
	cols := len(rows[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, cols)
	}
	for i, row := range rows {
		c := members[i]
		counts[c]++
		for j, v := range row {
			sums[c][j] += v
		}
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue // empty cluster keeps its old centroid
		}
		for j := 0; j < cols; j++ {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

func distSq(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// tierLabels names clusters by their members' mean average weekly sales so
// downstream reviewers see "Premium" rather than an opaque cluster id.
func tierLabels(stores []models.StoreProfile, members []int, k int) map[int]string {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, st := range stores {
		sums[members[i]] += st.AvgWeeklySales
		counts[members[i]]++
	}
	type ranked struct {
		id   int
		mean float64
	}
	order := make([]ranked, k)
	for c := 0; c < k; c++ {
		mean := 0.0
		if counts[c] > 0 {
			mean = sums[c] / float64(counts[c])
		}
		order[c] = ranked{id: c, mean: mean}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].mean > order[j].mean })

	labels := make(map[int]string, k)
	for rank, r := range order {
		if rank < len(tierNames) && k <= len(tierNames) {
			labels[r.id] = tierNames[rank]
		} else {
			labels[r.id] = fmt.Sprintf("Tier %d", rank+1)
		}
	}
	return labels
}
