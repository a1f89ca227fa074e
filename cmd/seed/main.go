package main

import (
	"context"
	"errors"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/config"
	"github.com/calorieking/backend/internal/database"
	"github.com/calorieking/backend/internal/logging"
	"github.com/calorieking/backend/internal/service"
	"github.com/calorieking/backend/internal/types"
)

type demoMeal struct {
	name  string
	foods []types.FoodItem
}

var demoMeals = []demoMeal{
	{
		name: "Breakfast",
		foods: []types.FoodItem{
			{Name: "Rolled oats with milk", Portion: "1 cup", Calories: 250},
			{Name: "Blueberries", Portion: "1/2 cup", Calories: 42},
		},
	},
	{
		name: "Lunch",
		foods: []types.FoodItem{
			{Name: "Grilled chicken breast", Portion: "6 oz", Calories: 280},
			{Name: "Brown rice", Portion: "1 cup", Calories: 215},
			{Name: "Steamed broccoli", Portion: "1 cup", Calories: 55},
		},
	},
	{
		name: "Dinner",
		foods: []types.FoodItem{
			{Name: "Baked salmon fillet", Portion: "5 oz", Calories: 290},
			{Name: "Roasted sweet potato", Portion: "1 medium", Calories: 115},
		},
	},
}

func main() {
	username := flag.String("username", "demo", "username of the demo account")
	password := flag.String("password", "demo123", "password of the demo account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, false)

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	authService := service.NewAuthService(db, log)
	mealService := service.NewMealService(db, log)

	userID, err := authService.Create(ctx, *username, *password)
	if errors.Is(err, service.ErrUserExists) {
		log.WithField("username", *username).Info("Demo user already exists, skipping")
		return
	}
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	for _, meal := range demoMeals {
		if _, err := mealService.Save(ctx, userID, meal.name, meal.foods, types.SumCalories(meal.foods), ""); err != nil {
			log.Fatalf("Failed to save demo meal %q: %v", meal.name, err)
		}
	}

	log.WithFields(logrus.Fields{
		"username": *username,
		"meals":    len(demoMeals),
	}).Info("Seeded demo account")
}
