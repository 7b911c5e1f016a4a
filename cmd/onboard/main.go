// Command onboard walks an athlete through the four-step onboarding wizard
// from a terminal: profile, readiness recommendation, cycle confirmation and
// the generated roadmap.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"peakform/coaching-app/internal/client"
	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/wizard"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	session := client.NewSession(client.NewFileSessionStore(cfg.Client.SessionFile))
	api := client.New(cfg.Client.BaseURL, session)

	in := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	if !session.Authenticated() {
		if err := login(ctx, in, api); err != nil {
			log.Fatalf("FATAL: Login failed: %v", err)
		}
	}
	if user := session.User(); user != nil {
		fmt.Printf("Signed in as %s.\n", user.Email)
		if user.IsOnboarded {
			fmt.Println("You are already onboarded. Nothing to do here.")
			return
		}
	}

	ctrl := wizard.NewController(api)
	for !ctrl.Done() {
		var err error
		switch ctrl.CurrentStep() {
		case wizard.StepProfile:
			err = runProfileStep(ctx, in, ctrl)
		case wizard.StepRecommendation:
			err = runRecommendationStep(in, ctrl)
		case wizard.StepConfirmation:
			err = runConfirmationStep(ctx, in, ctrl)
		case wizard.StepRoadmap:
			err = runRoadmapStep(ctx, in, ctrl)
		}
		if err != nil {
			fmt.Println(wizard.DisplayError(err))
		}
	}
	fmt.Println("All set. See you on the dashboard.")
}

func login(ctx context.Context, in *bufio.Reader, api *client.Client) error {
	email := prompt(in, "Email: ")
	password := prompt(in, "Password: ")
	_, err := api.Login(ctx, email, password)
	return err
}

// runProfileStep collects the profile fields and submits them. Goals are
// picked from the server-provided taxonomy so a typo fails locally instead
// of on submit.
func runProfileStep(ctx context.Context, in *bufio.Reader, ctrl *wizard.Controller) error {
	fmt.Println("\n-- Step 1 of 4: Your profile --")

	goalTypes, err := ctrl.GoalTypes(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Available goals:")
	for _, gt := range goalTypes {
		if gt.Subcategory != "" {
			fmt.Printf("  %s (%s)\n", gt.Category, gt.Subcategory)
		} else {
			fmt.Printf("  %s\n", gt.Category)
		}
	}

	profile := domain.OnboardingProfile{
		Height:             promptFloat(in, "Height (cm): "),
		Weight:             promptFloat(in, "Weight (kg): "),
		Age:                promptInt(in, "Age: "),
		Gender:             prompt(in, "Gender: "),
		TrainingExperience: domain.TrainingExperience(strings.ToUpper(prompt(in, "Experience (beginner/intermediate/advanced): "))),
		PrimaryGoal:        prompt(in, "Primary goal: "),
		SecondaryGoal:      prompt(in, "Secondary goal: "),
		EventDate:          prompt(in, "Event date (YYYY-MM-DD, blank if none): "),
		Occupation:         prompt(in, "Occupation (optional): "),
	}
	if equipment := prompt(in, "Equipment, comma separated (optional): "); equipment != "" {
		for _, item := range strings.Split(equipment, ",") {
			profile.Equipment = append(profile.Equipment, strings.TrimSpace(item))
		}
	}

	_, err = ctrl.SubmitProfile(ctx, profile)
	return err
}

func runRecommendationStep(in *bufio.Reader, ctrl *wizard.Controller) error {
	fmt.Println("\n-- Step 2 of 4: Your readiness --")
	for _, line := range wizard.RenderRecommendation(ctrl.Recommendation()) {
		fmt.Println(line)
	}

	for {
		switch strings.ToLower(prompt(in, "Accept this cycle? (yes/override/back): ")) {
		case "yes", "y":
			return ctrl.AcceptRecommendation()
		case "override", "o":
			cycle := domain.CycleName(titleWord(prompt(in, "Pick a cycle (Green/Amber/Red): ")))
			if err := ctrl.OverrideCycle(cycle); err != nil {
				fmt.Println(wizard.DisplayError(err))
				continue
			}
			return nil
		case "back", "b":
			ctrl.GoToStep(wizard.StepProfile)
			return nil
		}
	}
}

func runConfirmationStep(ctx context.Context, in *bufio.Reader, ctrl *wizard.Controller) error {
	fmt.Println("\n-- Step 3 of 4: Confirm --")
	selection := ctrl.Selection()
	fmt.Printf("You are about to start the %s cycle.\n", selection.CycleName)

	for {
		switch strings.ToLower(prompt(in, "Confirm? (yes/change/back): ")) {
		case "yes", "y":
			return ctrl.ConfirmAndAdvance(ctx)
		case "change", "c":
			ctrl.OpenOverridePicker()
			cycle := domain.CycleName(titleWord(prompt(in, "Pick a cycle (Green/Amber/Red): ")))
			ctrl.CloseOverridePicker()
			ctrl.GoToStep(wizard.StepRecommendation)
			if err := ctrl.OverrideCycle(cycle); err != nil {
				fmt.Println(wizard.DisplayError(err))
			}
			return nil
		case "back", "b":
			ctrl.GoToStep(wizard.StepRecommendation)
			return nil
		}
	}
}

func runRoadmapStep(ctx context.Context, in *bufio.Reader, ctrl *wizard.Controller) error {
	fmt.Println("\n-- Step 4 of 4: Your roadmap --")
	roadmap, err := ctrl.FetchRoadmap(ctx)
	if err != nil {
		// The roadmap is display-only; the athlete can still finish.
		fmt.Println(wizard.DisplayError(err))
	} else {
		for _, line := range wizard.RenderRoadmap(roadmap) {
			fmt.Println(line)
		}
	}

	prompt(in, "Press Enter to go to your dashboard.")
	return ctrl.CompleteOnboarding(ctx)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptFloat(in *bufio.Reader, label string) float64 {
	for {
		raw := prompt(in, label)
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			return v
		}
		fmt.Println("Please enter a number.")
	}
}

func promptInt(in *bufio.Reader, label string) int {
	for {
		raw := prompt(in, label)
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v
		}
		fmt.Println("Please enter a whole number.")
	}
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
