package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"citypulse/internal/config"
	"citypulse/internal/db"
	"citypulse/internal/domain"
	"citypulse/internal/llm"
	"citypulse/internal/repository"
	"citypulse/internal/service"
)

type demoVideo struct {
	UserID     string
	Borough    domain.Borough
	Title      string
	Transcript string
	Tags       []string
	HoursAgo   int
}

var demoVideos = []demoVideo{
	{"demo_user_1", domain.BoroughManhattan, "Times Square Sunset: Street Energy", "Walking through Times Square at sunset and the energy is incredible. Street performers everywhere and a breakdancer with a huge crowd.", []string{"times-square", "street-performance", "manhattan", "sunset", "energy"}, 2},
	{"demo_user_2", domain.BoroughManhattan, "Central Park Jazz & Fall Colors", "Central Park on a Saturday afternoon. Families having picnics and a live jazz band near Bethesda Fountain.", []string{"central-park", "jazz", "family", "fall", "nature"}, 4},
	{"demo_user_3", domain.BoroughManhattan, "Washington Square Food Truck Paradise", "Food truck heaven in Washington Square Park. A Korean BBQ truck with a line around the block and street musicians.", []string{"washington-square", "food-truck", "korean-food", "nyu", "music"}, 1},
	{"demo_user_4", domain.BoroughBrooklyn, "Williamsburg Street Art & Coffee Culture", "Bedford Avenue has new murals going up, vintage shops packed and a rooftop coffee shop overlooking Manhattan.", []string{"williamsburg", "street-art", "coffee", "bedford-avenue", "rooftop"}, 3},
	{"demo_user_5", domain.BoroughBrooklyn, "Brooklyn Bridge Park Market Vibes", "Farmers market with local vendors, artisanal bread and handmade crafts with the skyline behind.", []string{"brooklyn-bridge-park", "farmers-market", "local-vendors", "skyline", "weekend"}, 5},
	{"demo_user_6", domain.BoroughBrooklyn, "DUMBO Golden Hour Magic", "DUMBO waterfront at golden hour. Engagement photos, cyclists and food vendors serving tacos.", []string{"dumbo", "waterfront", "golden-hour", "photography", "tacos"}, 6},
	{"demo_user_7", domain.BoroughQueens, "Astoria Greek Food & Live Music", "A family-owned taverna in Astoria with live bouzouki music and the best lamb gyros in the city.", []string{"astoria", "greek-food", "live-music", "taverna", "authentic"}, 2},
	{"demo_user_8", domain.BoroughQueens, "Flushing Meadows Cultural Festival", "Barbecues, soccer and a cultural festival with music from around the world in Flushing Meadows.", []string{"flushing-meadows", "cultural-festival", "diversity", "barbecue", "world-music"}, 4},
	{"demo_user_9", domain.BoroughBronx, "South Bronx Hip-Hop Cypher", "An incredible cypher near Yankee Stadium. Local MCs, breakdancers and a crowd completely locked in.", []string{"south-bronx", "hip-hop", "cypher", "yankee-stadium", "breakdancing"}, 3},
	{"demo_user_10", domain.BoroughBronx, "Arthur Avenue: Real Little Italy", "Family-owned pasta shops, fresh mozzarella made in front of you and incredible cannoli on Arthur Avenue.", []string{"arthur-avenue", "little-italy", "pasta", "mozzarella", "authentic-italian"}, 1},
	{"demo_user_11", domain.BoroughStatenIsland, "Staten Island Ferry Sunset Views", "Ferry ride with sunset views of Manhattan, the Statue of Liberty and the lower Manhattan skyline.", []string{"staten-island-ferry", "sunset", "statue-of-liberty", "manhattan-skyline", "free"}, 2},
	{"demo_user_12", domain.BoroughStatenIsland, "Richmond Town Living History", "Historic Richmond Town with colonial buildings, blacksmith demonstrations and families learning history.", []string{"richmond-town", "history", "colonial", "blacksmith", "family-education"}, 5},
}

// preferencias iniciales para que los usuarios demo arranquen con perfil
var demoTastes = map[string][]string{
	"demo_user_1": {"street-performance", "urban-energy", "manhattan"},
	"demo_user_2": {"nature", "jazz", "family-friendly"},
	"demo_user_4": {"street-art", "coffee", "brooklyn"},
	"demo_user_7": {"authentic-food", "culture", "queens"},
	"demo_user_9": {"hip-hop", "bronx", "urban-culture"},
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := db.EnsureSchema(ctx, pool, cfg.EmbeddingDimensions); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	embedder, err := llm.NewEmbeddingSource(llm.ProviderConfig{
		Provider:   cfg.EmbeddingsProvider,
		APIKey:     cfg.EmbeddingAPIKey,
		BaseURL:    cfg.EmbeddingBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	}, logger)
	if err != nil {
		log.Fatalf("embedding provider: %v", err)
	}

	videoRepo := repository.NewPgVideoRepository(pool)
	tasteRepo := repository.NewPgTasteRepository(pool)
	videoSvc := service.NewVideoService(videoRepo, embedder, cfg.VideoTTL(), logger)
	updater := service.NewTasteUpdater(tasteRepo, cfg.TasteUpdateMaxAttempts, logger)

	now := time.Now().UTC()
	for _, d := range demoVideos {
		video, err := videoSvc.Publish(ctx, service.PublishInput{
			UserID:      d.UserID,
			Borough:     d.Borough,
			Title:       d.Title,
			Tags:        d.Tags,
			Transcript:  d.Transcript,
			MediaKey:    fmt.Sprintf("videos/%s/%s.mp4", now.Format("20060102"), d.UserID),
			DurationSec: 45,
			CreatedAt:   now.Add(-time.Duration(d.HoursAgo) * time.Hour),
		})
		if err != nil {
			log.Fatalf("publish %q: %v", d.Title, err)
		}
		fmt.Printf("video %s  %-14s %s\n", video.ID, video.Borough, video.Title)
	}

	for userID, prefs := range demoTastes {
		vec, err := embedder.Embed(ctx, strings.Join(prefs, " "))
		if err != nil {
			log.Fatalf("embed preferences for %s: %v", userID, err)
		}
		profile, err := updater.Apply(ctx, userID, vec)
		if err != nil {
			log.Fatalf("seed taste for %s: %v", userID, err)
		}
		fmt.Printf("taste %s  likes=%d\n", userID, profile.Count)
	}

	if cfg.JWTSecret != "" {
		jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
		for userID := range demoTastes {
			token, err := jwtSvc.IssueAccessToken(userID)
			if err != nil {
				log.Fatalf("issue token: %v", err)
			}
			fmt.Printf("token %s  %s\n", userID, token)
		}
	}
}
