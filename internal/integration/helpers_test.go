//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/camels"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the lifetime of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("water-balance-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

// constantSeries is two water years (WY1971, WY1972) of 2 mm/day rain and a
// steady flow equal to 1 mm/day over areaKm2.
func constantSeries(id string, areaKm2 float64) domain.CatchmentSeries {
	start := time.Date(1970, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1972, time.September, 30, 0, 0, 0, 0, time.UTC)
	vol := domain.SquareKilometresToSquareMetres(areaKm2) / 1000 / domain.SecondsPerDay

	var records []domain.DailyRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		records = append(records, domain.DailyRecord{
			Date:          d,
			Precipitation: 2,
			PET:           1.5,
			DischargeSpec: 1,
			DischargeVol:  vol,
		})
	}
	return domain.CatchmentSeries{ID: id, Records: records}
}

// writeDataset lays out an extracted dataset directory with the given gauges.
func writeDataset(t *testing.T, ids ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")

	topo := make([]domain.Topography, 0, len(ids))
	covers := make([]domain.LandCover, 0, len(ids))
	for i, id := range ids {
		area := 100 * float64(i+1)
		require.NoError(t, camels.WriteTimeseries(dir, constantSeries(id, area)))
		topo = append(topo, domain.Topography{ID: id, Name: "Gauge " + id, AreaKm2: area})
		covers = append(covers, domain.LandCover{ID: id, DeciduousWoodland: float64(5 + 20*i)})
	}
	require.NoError(t, camels.WriteTopography(dir, topo))
	require.NoError(t, camels.WriteLandCover(dir, covers))
	return dir
}

// publishedRecord is a balance record read back from the topic.
type publishedRecord struct {
	Record  domain.BalanceRecord
	Key     string
	Headers map[string]string
}

func newConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     "test-consumer-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// readRecords reads n messages from the consumer.
func readRecords(ctx context.Context, t *testing.T, consumer *kafkago.Reader, n int) []publishedRecord {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]publishedRecord, 0, n)
	for len(out) < n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read balance record %d of %d", len(out)+1, n)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var rec domain.BalanceRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		out = append(out, publishedRecord{Record: rec, Key: string(msg.Key), Headers: headers})
	}
	return out
}
