package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"kindred_server/routes"
	"kindred_server/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	blockService := &services.BlockService{Dynamo: dynamoService}
	responseService := &services.ResponseService{Dynamo: dynamoService}
	cycleService := &services.CycleService{Dynamo: dynamoService}
	matchRecordService := &services.MatchRecordService{Dynamo: dynamoService}
	notificationService := &services.NotificationService{Dynamo: dynamoService}

	workers := 0
	if v := os.Getenv("MATCH_WORKER_COUNT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			workers = parsed
		}
	}

	matchmakingService := &services.MatchmakingService{
		Cycles:    cycleService,
		Responses: responseService,
		Profiles:  userProfileService,
		Blocks:    blockService,
		Records:   matchRecordService,
		Notifier:  notificationService,
		Workers:   workers,
	}

	// Start the weekly match scheduler unless explicitly disabled
	if os.Getenv("MATCH_SCHEDULER_ENABLED") != "false" {
		matchmakingService.StartMatchScheduler()
		log.Println("Match scheduler started.")
	}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Kindred")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterMatchmakingRoutes(r, matchmakingService)
	routes.RegisterMatchRoutes(r, matchRecordService)
	routes.RegisterCycleRoutes(r, cycleService)
	routes.RegisterResponseRoutes(r, responseService)
	routes.RegisterBlockRoutes(r, blockService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
