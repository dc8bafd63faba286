package transit

import (
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

const alertLanguage = "de"

// AlertFeed converts the traffic information of a monitor response into a
// GTFS-Realtime feed with one alert entity per traffic info
func AlertFeed(resp *MonitorResponse, now time.Time) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}
	if resp == nil {
		return feed
	}

	for _, ti := range resp.Data.TrafficInfos {
		if ti.Name == "" {
			continue
		}
		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id:    proto.String(ti.Name),
			Alert: trafficInfoAlert(ti),
		})
	}
	return feed
}

// MarshalAlertFeed encodes the alert feed as protobuf
func MarshalAlertFeed(resp *MonitorResponse, now time.Time) ([]byte, error) {
	return proto.Marshal(AlertFeed(resp, now))
}

func trafficInfoAlert(ti TrafficInfo) *gtfs.Alert {
	alert := &gtfs.Alert{
		HeaderText:      translated(ti.Title),
		DescriptionText: translated(ti.Description),
	}

	if ti.Time != nil {
		period := &gtfs.TimeRange{}
		if ti.Time.Start != nil && !ti.Time.Start.IsZero() {
			period.Start = proto.Uint64(uint64(ti.Time.Start.Unix()))
		}
		if ti.Time.End != nil && !ti.Time.End.IsZero() {
			period.End = proto.Uint64(uint64(ti.Time.End.Unix()))
		}
		if period.Start != nil || period.End != nil {
			alert.ActivePeriod = []*gtfs.TimeRange{period}
		}
	}

	lines, stops := ti.RelatedLines, ti.RelatedStops
	if ti.Attributes != nil {
		if len(lines) == 0 {
			lines = ti.Attributes.RelatedLines
		}
		if len(stops) == 0 {
			stops = ti.Attributes.RelatedStops
		}
	}
	for _, line := range lines {
		alert.InformedEntity = append(alert.InformedEntity, &gtfs.EntitySelector{RouteId: proto.String(line)})
	}
	for _, stop := range stops {
		alert.InformedEntity = append(alert.InformedEntity, &gtfs.EntitySelector{StopId: proto.String(stop)})
	}

	return alert
}

func translated(text string) *gtfs.TranslatedString {
	if text == "" {
		return nil
	}
	return &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: proto.String(text), Language: proto.String(alertLanguage)},
		},
	}
}
