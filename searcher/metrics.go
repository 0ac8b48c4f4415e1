package searcher

import "time"

// SearchMetric summarizes one search run.
type SearchMetric struct {
	StartTime   time.Time
	Duration    time.Duration
	Steps       int
	Expansions  int
	Simulations int
	BestReward  float64
	Solved      bool
}

type Collector interface {
	Start()
	AddStep()
	AddExpansion(children int)
	AddSimulation(reward float64)
	SetSolved()
	Complete() SearchMetric
}

// The search loop is single-threaded, so the collector needs no
// synchronization.
type collector struct {
	metric SearchMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start() {
	c.metric = SearchMetric{StartTime: time.Now()}
}

func (c *collector) AddStep() {
	c.metric.Steps++
}

func (c *collector) AddExpansion(children int) {
	c.metric.Expansions += children
}

func (c *collector) AddSimulation(reward float64) {
	if c.metric.Simulations == 0 || reward > c.metric.BestReward {
		c.metric.BestReward = reward
	}
	c.metric.Simulations++
}

func (c *collector) SetSolved() {
	c.metric.Solved = true
}

func (c *collector) Complete() SearchMetric {
	c.metric.Duration = time.Since(c.metric.StartTime)
	return c.metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return dummyCollector{}
}

func (dummyCollector) Start()                 {}
func (dummyCollector) AddStep()               {}
func (dummyCollector) AddExpansion(int)       {}
func (dummyCollector) AddSimulation(float64)  {}
func (dummyCollector) SetSolved()             {}
func (dummyCollector) Complete() SearchMetric { return SearchMetric{} }
