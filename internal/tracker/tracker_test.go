package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
	"github.com/aevon-lab/folio-analytics/internal/collector"
	"github.com/aevon-lab/folio-analytics/internal/core/storage"
	storagemocks "github.com/aevon-lab/folio-analytics/internal/mocks/storage"
	trackermocks "github.com/aevon-lab/folio-analytics/internal/mocks/tracker"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1700000000000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestTracker(t *testing.T, store storage.SnapshotStore, listeners ...Listener) (*Tracker, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	tr := New(Options{
		Store:     store,
		Slot:      "session:test",
		Listeners: listeners,
		Now:       clock.Now,
		NewID:     sequentialIDs(),
	})
	return tr, clock
}

var desktopNav = v1.Navigation{
	UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
	Referrer:  "https://news.example.com",
	URL:       "https://portfolio.example.com/?utm_source=newsletter&utm_campaign=launch",
	Screen:    v1.Dimensions{Width: 1920, Height: 1080},
	Viewport:  v1.Dimensions{Width: 1440, Height: 900},
}

func TestTracker_Start(t *testing.T) {
	tr, _ := newTestTracker(t, nil)

	s, err := tr.Start(desktopNav)
	require.NoError(t, err)
	require.Equal(t, "id-1", s.SessionID)
	require.Equal(t, int64(1700000000000), s.StartTime)
	require.Nil(t, s.EndTime)
	require.Zero(t, s.PageViews)
	require.Zero(t, s.InteractionCount)
	require.Zero(t, s.EngagementScore)
	require.Empty(t, s.ConversionEvents)
	require.Equal(t, v1.DeviceDesktop, s.DeviceInfo.DeviceType)
	require.Equal(t, "Firefox", s.DeviceInfo.Browser)
	require.Equal(t, "Linux", s.DeviceInfo.OS)
	require.Equal(t, "https://news.example.com", s.Referrer)
	require.Equal(t, v1.UTM{Source: "newsletter", Campaign: "launch"}, s.UTM)
	require.Empty(t, s.Location.Timezone)
	require.Equal(t, map[string]string{
		v1.PrefAnimationSpeed: "normal",
		v1.PrefTheme:          "auto",
		v1.PrefLanguage:       "en",
	}, s.Preferences)

	events := tr.Events()
	require.Len(t, events, 1)
	require.Equal(t, v1.ActionSessionStart, events[0].Action)
	require.Equal(t, s.SessionID, events[0].SessionID)

	_, err = tr.Start(desktopNav)
	require.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestTracker_StartWithAssignedSessionID(t *testing.T) {
	tr := New(Options{SessionID: "assigned", NewID: sequentialIDs()})

	s, err := tr.Start(desktopNav)
	require.NoError(t, err)
	require.Equal(t, "assigned", s.SessionID)
	require.Equal(t, DefaultSlot, tr.Slot())
	require.Equal(t, "id-1", tr.Events()[0].ID)
}

func TestTracker_StartCapturesLocationAndPreferences(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	nav := desktopNav
	nav.Timezone = "America/New_York"
	nav.Preferences = map[string]string{
		v1.PrefTheme:          "dark",
		v1.PrefLanguage:       "pt-BR",
		v1.PrefAnimationSpeed: "",
		"fontSize":            "large",
	}

	s, err := tr.Start(nav)
	require.NoError(t, err)
	require.Equal(t, v1.Location{Timezone: "America/New_York"}, s.Location)
	require.Equal(t, map[string]string{
		v1.PrefAnimationSpeed: "normal",
		v1.PrefTheme:          "dark",
		v1.PrefLanguage:       "pt",
		"fontSize":            "large",
	}, s.Preferences)
}

func TestTracker_RecordPreferenceChange(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	tr.RecordPreferenceChange(v1.PrefTheme, "light")
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	tr.RecordPreferenceChange(v1.PrefTheme, "dark")
	tr.RecordPreferenceChange(v1.PrefLanguage, "FR-ca")
	tr.RecordPreferenceChange("contrast", "high")

	events := tr.Events()
	require.Len(t, events, 5)

	queued := events[1]
	require.Equal(t, v1.ActionPreferenceChange, queued.Action)
	require.Equal(t, v1.KindEngagement, queued.Kind)
	require.Equal(t, map[string]any{
		v1.MetaPreference:    v1.PrefTheme,
		v1.MetaSetting:       "light",
		v1.MetaPreviousValue: "auto",
	}, queued.Metadata)

	require.Equal(t, "light", events[2].Metadata[v1.MetaPreviousValue])
	require.Equal(t, "fr", events[3].Metadata[v1.MetaSetting])
	require.Equal(t, "en", events[3].Metadata[v1.MetaPreviousValue])
	require.NotContains(t, events[4].Metadata, v1.MetaPreviousValue)

	s, _ := tr.Session()
	require.Equal(t, "dark", s.Preferences[v1.PrefTheme])
	require.Equal(t, "fr", s.Preferences[v1.PrefLanguage])
	require.Equal(t, "high", s.Preferences["contrast"])
	require.Zero(t, s.InteractionCount)
	require.Equal(t, 4, s.EngagementScore)
}

func TestTracker_CountersAndEngagementScore(t *testing.T) {
	calls := []struct {
		kind   v1.Kind
		action string
	}{
		{v1.KindInteraction, v1.ActionClick},
		{v1.KindEngagement, v1.ActionScroll25},
		{v1.KindEngagement, v1.ActionScroll50},
		{v1.KindEngagement, v1.ActionScroll75},
		{v1.KindEngagement, v1.ActionScroll100},
		{v1.KindInteraction, v1.ActionFormFocus},
		{v1.KindInteraction, v1.ActionFeatureUsage},
		{v1.KindPageView, v1.ActionPageView},
		{v1.KindEngagement, "page_blur"},
		{v1.KindInteraction, "drag"},
		{v1.KindPerformance, "performance_lcp"},
	}

	tr, _ := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	wantScore, wantInteractions := 0, 0
	for _, c := range calls {
		tr.RecordEvent(c.kind, "test", c.action, nil, nil)
		wantScore += WeightFor(c.action)
		if c.kind == v1.KindInteraction {
			wantInteractions++
		}
	}

	// 1+1+2+3+4+2+3+1 plus three unknown actions at the default weight.
	require.Equal(t, 20, wantScore)

	s, ok := tr.Session()
	require.True(t, ok)
	require.Equal(t, wantScore, s.EngagementScore)
	require.Equal(t, wantInteractions, s.InteractionCount)
	require.Equal(t, 1, s.PageViews)

	events := tr.Events()
	require.Len(t, events, len(calls)+1)
	for i, c := range calls {
		require.Equal(t, c.action, events[i+1].Action)
		require.Equal(t, s.SessionID, events[i+1].SessionID)
	}
}

func TestTracker_QueuesEventsBeforeStart(t *testing.T) {
	tr, clock := newTestTracker(t, nil)

	tr.RecordPageView("/", "Home")
	clock.Advance(50 * time.Millisecond)
	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
	require.Empty(t, tr.Events())
	require.Empty(t, tr.SessionID())

	clock.Advance(50 * time.Millisecond)
	s, err := tr.Start(desktopNav)
	require.NoError(t, err)

	events := tr.Events()
	require.Len(t, events, 3)
	require.Equal(t, v1.ActionSessionStart, events[0].Action)
	require.Equal(t, v1.ActionPageView, events[1].Action)
	require.Equal(t, v1.ActionClick, events[2].Action)
	for _, e := range events {
		require.Equal(t, s.SessionID, e.SessionID)
	}
	require.Equal(t, int64(1700000000000), events[1].Timestamp)
	require.Equal(t, int64(1700000000050), events[2].Timestamp)

	got, _ := tr.Session()
	require.Equal(t, 1, got.PageViews)
	require.Equal(t, 1, got.InteractionCount)
	require.Equal(t, 2, got.EngagementScore)
}

func TestTracker_MetadataIsCopied(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	meta := map[string]any{v1.MetaElement: "button"}
	value := 3.0
	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, &value, meta)
	meta[v1.MetaElement] = "changed"
	value = 99

	evt := tr.Events()[1]
	require.Equal(t, "button", evt.Metadata[v1.MetaElement])
	require.Equal(t, 3.0, *evt.Value)

	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, map[string]any{})
	require.Nil(t, tr.Events()[2].Metadata)
}

func TestTracker_ConversionsAndWrappers(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	tr.RecordConversion("contact_form", v1.Float(1))
	tr.RecordConversion("resume_download", nil)
	tr.RecordFeatureUsage("search", v1.Float(2), map[string]any{"query": "go"})
	tr.RecordError("boom", nil)

	s, _ := tr.Session()
	require.Equal(t, []string{"contact_form", "resume_download"}, s.ConversionEvents)
	require.Equal(t, 5+5+3+1, s.EngagementScore)
	require.Equal(t, 1, s.InteractionCount)

	events := tr.Events()
	require.Len(t, events, 5)

	feature := events[3]
	require.Equal(t, v1.KindInteraction, feature.Kind)
	require.Equal(t, "feature", feature.Category)
	require.Equal(t, v1.ActionFeatureUsage, feature.Action)
	require.Equal(t, "search", feature.Metadata[v1.MetaFeature])
	require.Equal(t, "go", feature.Metadata["query"])

	errEvt := events[4]
	require.Equal(t, v1.KindError, errEvt.Kind)
	require.Equal(t, "boom", errEvt.Metadata[v1.MetaMessage])
}

func TestTracker_PageDwell(t *testing.T) {
	tr, clock := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	tr.RecordPageView("/", "Home")
	clock.Advance(10 * time.Second)
	tr.RecordPageView("/projects", "Projects")
	clock.Advance(4 * time.Second)
	tr.RecordPageView("/", "Home")
	clock.Advance(2 * time.Second)

	s, _ := tr.Session()
	require.Equal(t, 3, s.PageViews)
	require.Equal(t, "/", s.CurrentPage)
	require.Equal(t, v1.PageDwell{Visits: 1, TotalMs: 10000}, s.PageDwell["/"])
	require.Equal(t, v1.PageDwell{Visits: 1, TotalMs: 4000}, s.PageDwell["/projects"])

	tr.End(context.Background())

	s, _ = tr.Session()
	require.Empty(t, s.CurrentPage)
	require.Equal(t, v1.PageDwell{Visits: 2, TotalMs: 12000}, s.PageDwell["/"])
}

func TestTracker_RefreshDurationAndBounce(t *testing.T) {
	tr, clock := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)
	tr.RecordPageView("/", "Home")

	clock.Advance(15 * time.Second)
	tr.RefreshDuration()
	s, _ := tr.Session()
	require.Equal(t, int64(15000), s.TimeOnSite)
	require.Equal(t, 1, s.BounceRate)

	tr.RecordPageView("/about", "About")
	tr.RefreshDuration()
	s, _ = tr.Session()
	require.Equal(t, 0, s.BounceRate)
}

func TestTracker_UpdateViewport(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	tr.UpdateViewport(375, 812)

	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	tr.UpdateViewport(375, 812)
	s, _ := tr.Session()
	require.Equal(t, v1.DeviceMobile, s.DeviceInfo.DeviceType)
	require.Equal(t, v1.Dimensions{Width: 375, Height: 812}, s.DeviceInfo.Viewport)
	require.Equal(t, v1.Dimensions{Width: 1920, Height: 1080}, s.DeviceInfo.Screen)
}

func TestTracker_EndIsIdempotent(t *testing.T) {
	store := storagemocks.NewSnapshotStore(t)
	tr, clock := newTestTracker(t, store)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)
	tr.RecordPageView("/", "Home")
	clock.Advance(45 * time.Second)

	store.EXPECT().
		Save(mock.Anything, "session:test", mock.AnythingOfType("storage.Document")).
		Run(func(_ context.Context, _ string, doc storage.Document) {
			require.Len(t, doc.Events, 3)
			require.Len(t, doc.Sessions, 1)
			require.NotNil(t, doc.Sessions[0].EndTime)
		}).
		Return(nil).
		Once()

	tr.End(context.Background())
	clock.Advance(time.Minute)
	tr.End(context.Background())

	require.True(t, tr.Ended())

	events := tr.Events()
	require.Len(t, events, 3)
	last := events[2]
	require.Equal(t, v1.ActionSessionEnd, last.Action)
	require.Equal(t, 45000.0, *last.Value)

	s, _ := tr.Session()
	require.Equal(t, int64(45000), s.TimeOnSite)
	require.Equal(t, int64(1700000045000), *s.EndTime)
	require.Equal(t, 1, s.EngagementScore)
}

func TestTracker_EndBeforeStartDoesNothing(t *testing.T) {
	store := storagemocks.NewSnapshotStore(t)
	tr, _ := newTestTracker(t, store)

	tr.End(context.Background())
	require.False(t, tr.Ended())
	require.NoError(t, tr.Flush(context.Background()))
}

func TestTracker_FlushSkipsUnchangedState(t *testing.T) {
	store := storagemocks.NewSnapshotStore(t)
	tr, _ := newTestTracker(t, store)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	store.EXPECT().Save(mock.Anything, "session:test", mock.Anything).Return(nil).Twice()

	ctx := context.Background()
	require.NoError(t, tr.Flush(ctx))
	require.NoError(t, tr.Flush(ctx))

	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
	require.NoError(t, tr.Flush(ctx))
}

func TestTracker_FlushFailureIsReturnedAndRetried(t *testing.T) {
	store := storagemocks.NewSnapshotStore(t)
	tr, _ := newTestTracker(t, store)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	quota := errors.New("quota exceeded")
	store.EXPECT().Save(mock.Anything, "session:test", mock.Anything).Return(quota).Once()
	store.EXPECT().Save(mock.Anything, "session:test", mock.Anything).Return(nil).Once()

	err = tr.Flush(context.Background())
	require.ErrorIs(t, err, quota)

	// Recording keeps working and the next flush writes the same state.
	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
	require.Len(t, tr.Events(), 2)
	require.NoError(t, tr.Flush(context.Background()))
}

func TestTracker_FlushWithoutStore(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)
	require.NoError(t, tr.Flush(context.Background()))
	require.NoError(t, tr.Restore(context.Background()))
}

func TestTracker_PersistenceRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	tr, clock := newTestTracker(t, store)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	tr.RecordPageView("/", "Home")
	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, map[string]any{
		v1.MetaElement: "a#contact",
		v1.MetaX:       12.0,
	})
	tr.RecordConversion("contact_form", v1.Float(1))
	clock.Advance(5 * time.Second)
	tr.RefreshDuration()

	ctx := context.Background()
	require.NoError(t, tr.Flush(ctx))

	got, err := store.Load(ctx, "session:test")
	require.NoError(t, err)
	require.Equal(t, tr.Export(), got)
}

func TestTracker_PersistenceRoundTripWithCollectedEvents(t *testing.T) {
	store := storage.NewMemoryStore()
	tr, _ := newTestTracker(t, store)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	c := collector.New(tr, collector.Options{})
	c.Handle(collector.ScriptError{Message: "x is undefined", Source: "app.js", Line: 10, Column: 3})
	c.Handle(collector.Click{Tag: "BUTTON", ID: "send", X: 40, Y: 80})
	tr.RecordEvent(v1.KindInteraction, "interaction", "custom", nil, map[string]any{"count": 7, "ratio": float32(0.5)})

	ctx := context.Background()
	require.NoError(t, tr.Flush(ctx))

	got, err := store.Load(ctx, "session:test")
	require.NoError(t, err)
	require.Equal(t, tr.Export(), got)
}

func TestTracker_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing slot yields empty history", func(t *testing.T) {
		store := storagemocks.NewSnapshotStore(t)
		store.EXPECT().Load(mock.Anything, "session:test").Return(storage.Document{}, storage.ErrNotFound).Once()

		tr, _ := newTestTracker(t, store)
		require.NoError(t, tr.Restore(ctx))
		_, err := tr.Start(desktopNav)
		require.NoError(t, err)

		require.Equal(t, 1, tr.Analytics(0).TotalSessions)
	})

	t.Run("unreadable slot degrades to empty history", func(t *testing.T) {
		store := storagemocks.NewSnapshotStore(t)
		store.EXPECT().Load(mock.Anything, "session:test").Return(storage.Document{}, errors.New("disk gone")).Once()

		tr, _ := newTestTracker(t, store)
		require.NoError(t, tr.Restore(ctx))
		require.Equal(t, 0, tr.Analytics(0).TotalSessions)
	})

	t.Run("previous document is merged into analytics", func(t *testing.T) {
		previous := storage.Document{
			Events: []v1.Event{{
				ID: "old-1", Kind: v1.KindPageView, Category: "navigation", Action: v1.ActionPageView,
				Timestamp: 1699999990000, SessionID: "old", Metadata: map[string]any{v1.MetaPage: "/"},
			}},
			Sessions: []v1.Session{{SessionID: "old", StartTime: 1699999990000, PageViews: 1, TimeOnSite: 4000, EngagementScore: 1}},
		}
		store := storage.NewMemoryStore()
		require.NoError(t, store.Save(ctx, "session:test", previous))

		tr, _ := newTestTracker(t, store)
		require.NoError(t, tr.Restore(ctx))
		_, err := tr.Start(desktopNav)
		require.NoError(t, err)
		tr.RecordPageView("/", "Home")

		snap := tr.Analytics(0)
		require.Equal(t, 2, snap.TotalSessions)
		require.Equal(t, 2, snap.TotalPageViews)
		require.Len(t, tr.Events(), 2)

		require.ErrorIs(t, tr.Restore(ctx), ErrAlreadyStarted)
	})
}

func TestTracker_AnalyticsIsIdempotent(t *testing.T) {
	tr, clock := newTestTracker(t, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)
	tr.RecordPageView("/", "Home")
	tr.RecordFeatureUsage("search", nil, nil)
	clock.Advance(time.Second)

	require.Equal(t, tr.Analytics(24*time.Hour), tr.Analytics(24*time.Hour))
}

func TestTracker_NotifiesListeners(t *testing.T) {
	listener := trackermocks.NewListener(t)
	var seen []string
	listener.EXPECT().EventRecorded(mock.Anything).Run(func(evt v1.Event) {
		seen = append(seen, evt.Action)
	}).Return().Times(3)

	tr, _ := newTestTracker(t, nil, listener)
	tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)
	tr.End(context.Background())

	require.Equal(t, []string{v1.ActionSessionStart, v1.ActionClick, v1.ActionSessionEnd}, seen)
}

type panickingListener struct{}

func (panickingListener) EventRecorded(v1.Event) { panic("sink exploded") }

func TestTracker_ListenerPanicIsDiscarded(t *testing.T) {
	tr, _ := newTestTracker(t, nil, panickingListener{})
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
	})
	require.Len(t, tr.Events(), 2)
}

func TestTracker_ConcurrentRecording(t *testing.T) {
	tr, _ := newTestTracker(t, storage.NewMemoryStore())
	_, err := tr.Start(desktopNav)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.RecordEvent(v1.KindInteraction, "interaction", v1.ActionClick, nil, nil)
				if j%10 == 0 {
					_ = tr.Flush(context.Background())
				}
			}
		}()
	}
	wg.Wait()

	s, _ := tr.Session()
	require.Equal(t, 400, s.InteractionCount)
	require.Equal(t, 400, s.EngagementScore)
	require.Len(t, tr.Events(), 401)
}
