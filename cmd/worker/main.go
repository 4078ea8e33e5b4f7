package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"dulili/internal/models"
	"dulili/internal/services"
	"dulili/internal/tasks"
)

// Recurring system tasks the worker seeds on startup if missing.
var systemTasks = []struct {
	name  string
	rrule string
}{
	{tasks.TaskIssueLevies, "FREQ=DAILY"},
	{tasks.TaskRefreshArrears, "FREQ=HOURLY"},
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	}

	// Initialize Task Registry
	tasks.DefineTasks(cache)
	seedSystemTasks(db)

	log.Println("Worker started. Waiting for next tick...")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	// Ticker for 5 minutes; run once immediately on start.
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	tasks.ProcessScheduledTasks(ctx, db, time.Now())

	for {
		select {
		case <-ticker.C:
			tasks.ProcessScheduledTasks(ctx, db, time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// seedSystemTasks ensures the recurring levy-run and arrears-refresh tasks
// exist.
func seedSystemTasks(db *gorm.DB) {
	for _, st := range systemTasks {
		var count int64
		db.Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ?", st.name, models.ScheduledTaskStatusActive).
			Count(&count)
		if count > 0 {
			continue
		}

		rule := st.rrule
		task, err := tasks.BuildScheduledTask(st.name, map[string]interface{}{}, time.Now(), &rule, models.ScheduledTaskTypeRecurring, 3)
		if err != nil {
			log.Printf("Failed to build system task %s: %v", st.name, err)
			continue
		}
		if err := db.Create(task).Error; err != nil {
			log.Printf("Failed to seed system task %s: %v", st.name, err)
			continue
		}
		log.Printf("Seeded system task %s (%s)", st.name, st.rrule)
	}
}
