package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

// trialDays is the free trial attached to every new subscription.
const trialDays = 7

// stripeBilling implements billingService with Stripe Checkout, the customer
// portal and signed webhooks.
type stripeBilling struct {
	webhookSecret string
	// prices maps tier -> Stripe price id.
	prices map[string]string
}

// newStripeBilling sets the package-level API key used by every stripe-go call.
func newStripeBilling(cfg config) *stripeBilling {
	stripe.Key = cfg.StripeSecretKey
	return &stripeBilling{webhookSecret: cfg.StripeWebhookSecret, prices: cfg.StripePrices}
}

func (s *stripeBilling) createCheckout(ctx context.Context, tier string, p profile, email, origin string) (checkoutResult, error) {
	price := s.prices[tier]
	if price == "" {
		return checkoutResult{}, errUnknownTier
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(trialDays),
		},
		SuccessURL: stripe.String(origin + "/?success=true"),
		CancelURL:  stripe.String(origin + "/?canceled=true"),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.Itoa(p.UserID))
	params.AddMetadata("tier", tier)
	if p.StripeCustomerID != nil && *p.StripeCustomerID != "" {
		params.Customer = stripe.String(*p.StripeCustomerID)
	} else if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := session.New(params)
	if err != nil {
		return checkoutResult{}, fmt.Errorf("create checkout session: %w", err)
	}
	res := checkoutResult{URL: sess.URL}
	if sess.Customer != nil {
		res.CustomerID = sess.Customer.ID
	}
	return res, nil
}

func (s *stripeBilling) createPortal(ctx context.Context, customerID, origin string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(origin + "/"),
	}
	params.Context = ctx
	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeBilling) parseWebhook(payload []byte, signature string) (subscriptionEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return subscriptionEvent{}, fmt.Errorf("verify signature: %w", err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return subscriptionEvent{}, fmt.Errorf("decode checkout session: %w", err)
		}
		return s.checkoutEvent(cs)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return subscriptionEvent{}, fmt.Errorf("decode subscription: %w", err)
		}
		return subscriptionChangedEvent(&sub), nil
	}
	return subscriptionEvent{}, nil
}

// checkoutEvent reads the user from session metadata and fetches the new
// subscription for its period end.
func (s *stripeBilling) checkoutEvent(cs stripe.CheckoutSession) (subscriptionEvent, error) {
	userID, err := strconv.Atoi(cs.Metadata["user_id"])
	if err != nil {
		return subscriptionEvent{}, fmt.Errorf("checkout session without user_id metadata")
	}
	ev := subscriptionEvent{
		Kind:   eventCheckoutCompleted,
		UserID: userID,
		Tier:   cs.Metadata["tier"],
		Status: "active",
	}
	if cs.Customer != nil {
		ev.CustomerID = cs.Customer.ID
	}
	if cs.Subscription != nil && cs.Subscription.ID != "" {
		ev.SubscriptionID = cs.Subscription.ID
		sub, err := subscription.Get(cs.Subscription.ID, nil)
		if err != nil {
			return subscriptionEvent{}, fmt.Errorf("fetch subscription: %w", err)
		}
		ev.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	return ev, nil
}

func subscriptionChangedEvent(sub *stripe.Subscription) subscriptionEvent {
	ev := subscriptionEvent{
		Kind:           eventSubscriptionChanged,
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.Customer != nil {
		ev.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		ev.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	return ev
}
