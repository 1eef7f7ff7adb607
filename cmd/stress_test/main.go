package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/merchant/internal/adapter/storage"
	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/core/service"
	"github.com/rl1809/merchant/internal/port"
)

const stressCatalog = `[
  {"id": 1, "name": "Red Shirt", "price": 500, "category": "apparel", "color": "red"},
  {"id": 2, "name": "Blue Mug", "price": 200, "category": "kitchen", "color": "blue"}
]`

// Fires concurrent CreateOrder calls at one JSON order log and checks that
// no append was lost.
func main() {
	totalRequests := flag.Int("n", 50, "number of concurrent orders")
	redisAddr := flag.String("redis", "", "use a Redis lock at this address instead of the in-process lock")
	flag.Parse()

	ctx := context.Background()

	dir, err := os.MkdirTemp("", "merchant-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	catalogPath := filepath.Join(dir, "catalog.json")
	ordersPath := filepath.Join(dir, "orders.json")
	if err := os.WriteFile(catalogPath, []byte(stressCatalog), 0o644); err != nil {
		log.Fatalf("failed to write catalog: %v", err)
	}

	var locker port.Locker = storage.NewLocalLocker()
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		locker = storage.NewRedisAdapter(rdb)
	}

	catalog := storage.NewJSONCatalog(catalogPath)
	orders := storage.NewJSONOrderStore(ordersPath, locker)
	orderService := service.NewOrderService(catalog, orders)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			qty := n%3 + 1
			items := []domain.LineItem{{ProductID: domain.NumericID(int64(n%2 + 1)), Quantity: &qty}}
			if _, err := orderService.CreateOrder(ctx, items); err != nil {
				log.Printf("order %d failed: %v", n, err)
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	logged, err := orderService.ListOrders(ctx)
	if err != nil {
		log.Fatalf("failed to read order log: %v", err)
	}

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Orders In Log:    %d\n", len(logged))
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if int(success) == *totalRequests {
		fmt.Printf("PASS: all %d orders succeeded\n", success)
	} else {
		fmt.Printf("FAIL: expected %d successes, got %d\n", *totalRequests, success)
	}

	if len(logged) == int(success) {
		fmt.Println("PASS: no lost updates in order log")
	} else {
		fmt.Printf("FAIL: %d orders created but %d in log\n", success, len(logged))
	}
}
