package collector

import (
	"context"
	"log"

	"github.com/mbellini/effwatch/internal/domain"
)

// BucketsInfo records which buckets were discovered for a collection run.
type BucketsInfo struct {
	Window      string
	AFK         string
	Browser     string
	EditorCount int
}

// Snapshot holds all raw events fetched for one period, grouped by kind.
type Snapshot struct {
	Window  []domain.RawEvent
	AFK     []domain.RawEvent
	Browser []domain.RawEvent
	Editor  []domain.RawEvent
	Buckets BucketsInfo
}

// Events returns all raw events of the snapshot as a single slice.
func (s *Snapshot) Events() []domain.RawEvent {
	all := make([]domain.RawEvent, 0, len(s.Window)+len(s.AFK)+len(s.Browser)+len(s.Editor))
	all = append(all, s.Window...)
	all = append(all, s.AFK...)
	all = append(all, s.Browser...)
	all = append(all, s.Editor...)
	return all
}

// Counts returns per-kind raw event counts for diagnostics.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		string(domain.KindWindow):  len(s.Window),
		string(domain.KindAFK):     len(s.AFK),
		string(domain.KindBrowser): len(s.Browser),
		string(domain.KindEditor):  len(s.Editor),
	}
}

// CollectAll fetches window, AFK, browser and editor events for the
// period. Bucket discovery failing is a data-source error; a missing
// individual bucket just leaves that stream empty. Fetches are
// independent, so downstream merging never depends on fetch order.
func (c *Client) CollectAll(ctx context.Context, p domain.Period, editorPrefixes []string) (*Snapshot, error) {
	snap := &Snapshot{}

	windowBucket, err := c.FindBucket(ctx, windowClientPrefix)
	if err != nil {
		return snap, err
	}
	afkBucket, _ := c.FindBucket(ctx, afkClientPrefix)
	browserBucket, _ := c.FindBucket(ctx, browserClientPrefix)

	var editorBuckets []string
	for _, prefix := range editorPrefixes {
		ids, err := c.FindAllBuckets(ctx, prefix)
		if err != nil {
			return snap, err
		}
		editorBuckets = append(editorBuckets, ids...)
	}

	snap.Buckets = BucketsInfo{
		Window:      windowBucket,
		AFK:         afkBucket,
		Browser:     browserBucket,
		EditorCount: len(editorBuckets),
	}

	if windowBucket != "" {
		if snap.Window, err = c.Events(ctx, windowBucket, domain.KindWindow, p.Start, p.End); err != nil {
			return snap, err
		}
	}
	if afkBucket != "" {
		if snap.AFK, err = c.Events(ctx, afkBucket, domain.KindAFK, p.Start, p.End); err != nil {
			return snap, err
		}
	}
	if browserBucket != "" {
		if snap.Browser, err = c.Events(ctx, browserBucket, domain.KindBrowser, p.Start, p.End); err != nil {
			return snap, err
		}
	}
	for _, bucket := range editorBuckets {
		events, err := c.Events(ctx, bucket, domain.KindEditor, p.Start, p.End)
		if err != nil {
			// Editor watchers come and go; a stale bucket must not
			// sink the whole collection.
			log.Printf("skipping editor bucket %s: %v", bucket, err)
			continue
		}
		snap.Editor = append(snap.Editor, events...)
	}

	return snap, nil
}
