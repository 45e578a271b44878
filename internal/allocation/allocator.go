// Package allocation distributes manufactured units down to cluster and
// store level. Rounding always goes through a largest-remainder pass so the
// store-level sums reconcile exactly against the pool being distributed;
// stores are never rounded independently.
package allocation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/trimline/seasonplan/internal/models"
)

// ErrAllocationImbalance means reconciliation could not close within the
// one-unit-per-store tolerance. Surfaced, never silently tolerated.
var ErrAllocationImbalance = errors.New("allocation does not reconcile")

// Input carries everything the allocator needs for one plan.
type Input struct {
	TotalDemand         int
	SafetyStockFraction float64
	DCHoldbackFraction  float64
	Assignments         []models.ClusterAssignment

	// StoreShares is each store's historical share of category sales.
	// Missing or empty shares fall back to an equal split.
	StoreShares map[string]float64
}

// Plan is the raw allocator result before guardrail validation.
type Plan struct {
	ManufacturingQty    int
	SafetyStockFraction float64
	ImmediateUnits      int
	HoldbackUnits       int
	Stores              []models.StoreAllocation
	ClusterShares       map[int]float64
}

// Allocator is stateless; one instance serves all workflows.
type Allocator struct{}

func New() *Allocator { return &Allocator{} }

// Build computes manufacturing quantity from demand and safety stock, splits
// it into an immediate pool and a DC holdback pool, and distributes both
// pools hierarchically: cluster first by historical share, then store within
// cluster by individual share.
func (a *Allocator) Build(in Input) (Plan, error) {
	if in.TotalDemand < 0 {
		return Plan{}, fmt.Errorf("total demand must be >= 0, got %d", in.TotalDemand)
	}
	if len(in.Assignments) == 0 {
		return Plan{}, fmt.Errorf("no store assignments")
	}
	if in.DCHoldbackFraction < 0 || in.DCHoldbackFraction > 1 {
		return Plan{}, fmt.Errorf("dc holdback fraction must be in [0,1], got %g", in.DCHoldbackFraction)
	}

	mfgQty := int(math.Round(float64(in.TotalDemand) * (1 + in.SafetyStockFraction)))
	holdbackPool := int(math.Round(float64(mfgQty) * in.DCHoldbackFraction))
	immediatePool := mfgQty - holdbackPool

	clusters := groupByCluster(in.Assignments)
	clusterIDs := sortedClusterIDs(clusters)

	weights := make([]float64, len(clusterIDs))
	shares := make(map[int]float64, len(clusterIDs))
	var totalWeight float64
	for i, cid := range clusterIDs {
		weights[i] = clusterWeight(clusters[cid], in.StoreShares)
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		// No history anywhere: equal split across clusters.
		for i := range weights {
			weights[i] = 1
		}
		totalWeight = float64(len(weights))
	}
	for i, cid := range clusterIDs {
		shares[cid] = weights[i] / totalWeight
	}

	immediateByCluster := largestRemainder(immediatePool, weights)
	holdbackByCluster := largestRemainder(holdbackPool, weights)

	var stores []models.StoreAllocation
	for i, cid := range clusterIDs {
		members := clusters[cid]
		memberWeights := storeWeights(members, in.StoreShares)
		initial := largestRemainder(immediateByCluster[i], memberWeights)
		holdback := largestRemainder(holdbackByCluster[i], memberWeights)
		for j, st := range members {
			stores = append(stores, models.StoreAllocation{
				StoreID:       st.StoreID,
				ClusterID:     cid,
				InitialUnits:  initial[j],
				HoldbackUnits: holdback[j],
			})
		}
	}

	plan := Plan{
		ManufacturingQty:    mfgQty,
		SafetyStockFraction: in.SafetyStockFraction,
		ImmediateUnits:      immediatePool,
		HoldbackUnits:       holdbackPool,
		Stores:              stores,
		ClusterShares:       shares,
	}
	if err := plan.reconcile(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// reconcile verifies unit conservation after rounding.
func (p Plan) reconcile() error {
	var initial, holdback int
	for _, s := range p.Stores {
		if s.InitialUnits < 0 || s.HoldbackUnits < 0 {
			return fmt.Errorf("%w: negative units for store %s", ErrAllocationImbalance, s.StoreID)
		}
		initial += s.InitialUnits
		holdback += s.HoldbackUnits
	}
	if initial != p.ImmediateUnits {
		return fmt.Errorf("%w: initial units %d != immediate pool %d", ErrAllocationImbalance, initial, p.ImmediateUnits)
	}
	if holdback != p.HoldbackUnits {
		return fmt.Errorf("%w: holdback units %d != holdback pool %d", ErrAllocationImbalance, holdback, p.HoldbackUnits)
	}
	if initial+holdback != p.ManufacturingQty {
		return fmt.Errorf("%w: distributed %d != manufacturing qty %d", ErrAllocationImbalance, initial+holdback, p.ManufacturingQty)
	}
	return nil
}

func groupByCluster(assigns []models.ClusterAssignment) map[int][]models.ClusterAssignment {
	out := map[int][]models.ClusterAssignment{}
	for _, a := range assigns {
		out[a.ClusterID] = append(out[a.ClusterID], a)
	}
	for cid := range out {
		members := out[cid]
		sort.Slice(members, func(i, j int) bool { return members[i].StoreID < members[j].StoreID })
	}
	return out
}

func sortedClusterIDs(clusters map[int][]models.ClusterAssignment) []int {
	ids := make([]int, 0, len(clusters))
	for cid := range clusters {
		ids = append(ids, cid)
	}
	sort.Ints(ids)
	return ids
}

func clusterWeight(members []models.ClusterAssignment, shares map[string]float64) float64 {
	var sum float64
	for _, m := range members {
		sum += shares[m.StoreID]
	}
	return sum
}

func storeWeights(members []models.ClusterAssignment, shares map[string]float64) []float64 {
	weights := make([]float64, len(members))
	var sum float64
	for i, m := range members {
		weights[i] = shares[m.StoreID]
		sum += weights[i]
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1
		}
	}
	return weights
}

// largestRemainder apportions total units across weights exactly: floor each
// exact quota, then hand the leftover units to the largest fractional
// remainders. Ties break on lower index for determinism.
func largestRemainder(total int, weights []float64) []int {
	n := len(weights)
	out := make([]int, n)
	if total <= 0 || n == 0 {
		return out
	}
	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		weightSum = float64(n)
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, n)
	assigned := 0
	for i, w := range weights {
		quota := float64(total) * w / weightSum
		floor := int(math.Floor(quota))
		out[i] = floor
		assigned += floor
		rems[i] = rem{idx: i, frac: quota - float64(floor)}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; i < total-assigned; i++ {
		out[rems[i%n].idx]++
	}
	return out
}
