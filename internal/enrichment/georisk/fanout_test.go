package georisk

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mutafriches/internal/parcel"
	"mutafriches/pkg/geo"
)

type stubSource struct {
	id      parcel.GeoRiskSource
	payload parcel.Payload
	err     error
	panics  bool
	block   bool
	calls   atomic.Int32
	radius  atomic.Value
}

func (s *stubSource) ID() parcel.GeoRiskSource { return s.id }

func (s *stubSource) Fetch(ctx context.Context, _, _, radius float64) (parcel.Payload, error) {
	s.calls.Add(1)
	s.radius.Store(radius)
	if s.panics {
		panic("provider exploded")
	}
	if s.block {
		select {} // ignores ctx on purpose
	}
	return s.payload, s.err
}

type FanOutSuite struct {
	suite.Suite
	point geo.Point
}

func TestFanOutSuite(t *testing.T) {
	suite.Run(t, new(FanOutSuite))
}

func (s *FanOutSuite) SetupTest() {
	s.point = geo.Point{Lat: 47.2378, Lon: 6.0241}
}

// healthy returns one answering stub per fixed source.
func (s *FanOutSuite) healthy() map[parcel.GeoRiskSource]*stubSource {
	out := make(map[parcel.GeoRiskSource]*stubSource, len(parcel.GeoRiskSources))
	for _, id := range parcel.GeoRiskSources {
		out[id] = &stubSource{id: id, payload: parcel.Payload{"source": string(id)}}
	}
	return out
}

func (s *FanOutSuite) fanOut(stubs map[parcel.GeoRiskSource]*stubSource, opts ...Option) *FanOut {
	sources := make([]Source, 0, len(stubs))
	for _, st := range stubs {
		sources = append(sources, st)
	}
	return New(sources, opts...)
}

// =============================================================================
// Aggregation
// =============================================================================

func (s *FanOutSuite) TestAllSourcesAnswer() {
	stubs := s.healthy()

	res := s.fanOut(stubs).FetchAll(context.Background(), s.point)

	s.Equal(parcel.GeoRiskSources, res.Metadata.SourcesUsed)
	s.Empty(res.Metadata.SourcesFailed)
	s.Equal(10.0, res.Metadata.Reliability)
	s.Len(res.Risks, parcel.GeoRiskSourceCount)
	s.Equal("radon", res.Risks[parcel.GeoRiskRadon]["source"])
	for _, st := range stubs {
		s.Equal(int32(1), st.calls.Load())
	}
}

func (s *FanOutSuite) TestIsolation() {
	for k := 0; k <= parcel.GeoRiskSourceCount; k++ {
		s.Run(fmt.Sprintf("%d failing sources", k), func() {
			stubs := s.healthy()
			for i, id := range parcel.GeoRiskSources[:k] {
				switch i % 3 {
				case 0:
					stubs[id].err = errors.New("outage")
				case 1:
					stubs[id].panics = true
				default:
					stubs[id].payload = nil
				}
			}

			res := s.fanOut(stubs).FetchAll(context.Background(), s.point)

			s.Len(res.Metadata.SourcesFailed, k)
			s.Len(res.Metadata.SourcesUsed, parcel.GeoRiskSourceCount-k)
			s.Equal(parcel.GeoRiskReliability(parcel.GeoRiskSourceCount-k), res.Metadata.Reliability)
			if k == parcel.GeoRiskSourceCount {
				s.Nil(res.Risks, "no data must be distinguishable from empty data")
			} else {
				s.Len(res.Risks, parcel.GeoRiskSourceCount-k)
			}
		})
	}
}

func (s *FanOutSuite) TestUnregisteredSourceFails() {
	stubs := s.healthy()
	delete(stubs, parcel.GeoRiskRadon)

	res := s.fanOut(stubs).FetchAll(context.Background(), s.point)

	s.Equal([]parcel.GeoRiskSource{parcel.GeoRiskRadon}, res.Metadata.SourcesFailed)
	s.Equal(9.2, res.Metadata.Reliability)
}

// =============================================================================
// Timeouts and radius
// =============================================================================

func (s *FanOutSuite) TestSlowSourceDoesNotBlockSiblings() {
	stubs := s.healthy()
	stubs[parcel.GeoRiskICPE].block = true

	start := time.Now()
	res := s.fanOut(stubs, WithSourceConfig(parcel.GeoRiskICPE, SourceConfig{Timeout: 50 * time.Millisecond})).
		FetchAll(context.Background(), s.point)

	s.Less(time.Since(start), 5*time.Second)
	s.Equal([]parcel.GeoRiskSource{parcel.GeoRiskICPE}, res.Metadata.SourcesFailed)
	s.Len(res.Metadata.SourcesUsed, parcel.GeoRiskSourceCount-1)
}

func (s *FanOutSuite) TestRadiusPerSource() {
	stubs := s.healthy()

	s.fanOut(stubs, WithSourceConfig(parcel.GeoRiskSIS, SourceConfig{Timeout: time.Second, Radius: 250})).
		FetchAll(context.Background(), s.point)

	s.Equal(250.0, stubs[parcel.GeoRiskSIS].radius.Load())
	s.Equal(15000.0, stubs[parcel.GeoRiskNuclearSites].radius.Load())
	s.Equal(0.0, stubs[parcel.GeoRiskRadon].radius.Load())
}
