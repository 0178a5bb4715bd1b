package database

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/flowsight/flowsight/internal/common/cnst"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "demo123"

var demoUserNames = []string{
	"Alice Carter", "John Patel", "Maria Gomez", "Liam Chen", "Sophia Reed",
	"Ethan Brooks", "Ava Singh", "Noah Bennett", "Olivia Flores", "Mason Clarke",
	"Harper Lewis", "Lucas Moreno", "Mia Rossi", "Henry Watts", "Chloe Turner",
	"Benjamin Lee", "Isabella Cruz", "Daniel Novak", "Grace Kim", "Oliver Hayes",
}

var demoPlans = []string{"Starter", "Growth", "Scale"}

var demoOrderAmounts = []int64{19, 29, 49, 99, 149, 199}

var demoOrderStatusPool = []OrderStatus{
	OrderCompleted, OrderCompleted, OrderCompleted, OrderCompleted,
	OrderPending, OrderCancelled,
}

var demoActivityTypes = []struct {
	Action      string
	Description string
}{
	{"login", "Logged into FlowSight"},
	{"order", "Placed a new order"},
	{"subscription", "Started a subscription"},
	{"subscription_update", "Updated subscription plan"},
	{"billing", "Updated billing information"},
	{"support", "Contacted support"},
}

// SeedDemoWorkspace populates the shared demo workspace with sample users,
// orders, subscriptions and activities. It is idempotent: a demo workspace
// that already has users is left untouched.
func SeedDemoWorkspace(ctx context.Context, db Database) error {
	ws, err := db.GetOrCreateWorkspace(ctx, cnst.DemoWorkspaceID, cnst.DemoWorkspaceName)
	if err != nil {
		return fmt.Errorf("resolve demo workspace: %w", err)
	}

	count, err := db.CountUsers(ctx, ws.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Fixed seed keeps the demo dataset stable across restarts.
	rng := rand.New(rand.NewSource(42))

	admin := &User{
		Email:       "admin@flowsight.dev",
		Name:        "Demo Admin",
		Password:    string(hash),
		Role:        RoleAdmin,
		WorkspaceID: ws.ID,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		return err
	}

	users := make([]*User, 0, len(demoUserNames))
	for i, name := range demoUserNames {
		role := RoleUser
		if i%6 == 0 {
			role = RoleManager
		}
		u := &User{
			Email:       strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@demo.dev",
			Name:        name,
			Password:    string(hash),
			Role:        role,
			WorkspaceID: ws.ID,
		}
		if err := db.CreateUser(ctx, u); err != nil {
			return err
		}
		users = append(users, u)
	}

	if err := seedSubscriptions(ctx, db, rng, users, ws.ID); err != nil {
		return err
	}
	if err := seedOrders(ctx, db, rng, users, ws.ID); err != nil {
		return err
	}
	return seedActivities(ctx, db, rng, users, ws.ID)
}

func seedSubscriptions(ctx context.Context, db Database, rng *rand.Rand, users []*User, workspaceID uint) error {
	statusPool := []SubscriptionStatus{
		SubscriptionActive, SubscriptionActive, SubscriptionActive,
		SubscriptionCancelled, SubscriptionExpired,
	}

	// First 14 demo users carry subscriptions.
	for i, u := range users[:14] {
		status := statusPool[i%len(statusPool)]
		start := randomDateWithin(rng, 120)
		end := start.AddDate(0, 0, randomRange(rng, 15, 60))
		if status == SubscriptionActive {
			end = start.AddDate(0, 0, randomRange(rng, 60, 120))
			if end.Before(time.Now()) {
				end = time.Now().AddDate(0, 0, randomRange(rng, 45, 90))
			}
		} else if end.After(time.Now()) {
			end = time.Now().AddDate(0, 0, -randomRange(rng, 5, 20))
		}

		sub := &Subscription{
			UserID:      u.ID,
			WorkspaceID: workspaceID,
			Plan:        demoPlans[rng.Intn(len(demoPlans))],
			Status:      status,
			StartDate:   start,
			EndDate:     &end,
		}
		if err := db.CreateSubscription(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

func seedOrders(ctx context.Context, db Database, rng *rand.Rand, users []*User, workspaceID uint) error {
	const totalOrders = 100
	for i := 0; i < totalOrders; i++ {
		o := &Order{
			UserID:      users[rng.Intn(len(users))].ID,
			WorkspaceID: workspaceID,
			Amount:      decimal.NewFromInt(demoOrderAmounts[rng.Intn(len(demoOrderAmounts))]),
			Status:      demoOrderStatusPool[rng.Intn(len(demoOrderStatusPool))],
			CreatedAt:   randomDateWithin(rng, 90),
		}
		if err := db.CreateOrder(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func seedActivities(ctx context.Context, db Database, rng *rand.Rand, users []*User, workspaceID uint) error {
	const totalActivities = 90
	for i := 0; i < totalActivities; i++ {
		kind := demoActivityTypes[rng.Intn(len(demoActivityTypes))]
		u := users[rng.Intn(len(users))]
		a := &Activity{
			UserID:      u.ID,
			WorkspaceID: workspaceID,
			Action:      kind.Action,
			Description: fmt.Sprintf("%s (%s)", kind.Description, u.Name),
			CreatedAt:   randomDateWithin(rng, 90),
		}
		if err := db.CreateActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func randomDateWithin(rng *rand.Rand, days int) time.Time {
	now := time.Now()
	past := now.AddDate(0, 0, -days)
	span := now.Sub(past)
	return past.Add(time.Duration(rng.Int63n(int64(span))))
}

func randomRange(rng *rand.Rand, min, max int) int {
	return rng.Intn(max-min+1) + min
}
