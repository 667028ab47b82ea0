// ABOUTME: Closed vocabularies for partner, note, and task fields
// ABOUTME: Provides ordered value lists and membership checks
package models

import "slices"

// Pipeline status constants, in pipeline order.
const (
	StatusNewLead             = "New Lead"
	StatusContacted           = "Contacted"
	StatusProposalSent        = "Proposal Sent"
	StatusContractPreparation = "Contract Preparation"
	StatusOnboarding          = "Onboarding"
	StatusActive              = "Active"
)

// PipelineStatuses lists every status in pipeline order.
var PipelineStatuses = []string{
	StatusNewLead,
	StatusContacted,
	StatusProposalSent,
	StatusContractPreparation,
	StatusOnboarding,
	StatusActive,
}

// Lead source constants, meaningful while a partner is a New Lead.
const (
	LeadSourceInbound        = "Inbound"
	LeadSourceReferral       = "Referral"
	LeadSourceConference     = "Conference"
	LeadSourceOutbound       = "Outbound"
	LeadSourcePartnerNetwork = "Partner Network"
	LeadSourceOther          = "Other"
)

var LeadSources = []string{
	LeadSourceInbound,
	LeadSourceReferral,
	LeadSourceConference,
	LeadSourceOutbound,
	LeadSourcePartnerNetwork,
	LeadSourceOther,
}

// Onboarding step constants, meaningful while a partner is Onboarding.
const (
	OnboardingStepKickoff         = "Kickoff"
	OnboardingStepDataIntegration = "Data Integration"
	OnboardingStepTraining        = "Training"
	OnboardingStepLaunch          = "Launch"
	OnboardingStepReview          = "Post-Launch Review"
)

var OnboardingSteps = []string{
	OnboardingStepKickoff,
	OnboardingStepDataIntegration,
	OnboardingStepTraining,
	OnboardingStepLaunch,
	OnboardingStepReview,
}

// Partnership health constants, meaningful while a partner is Active.
const (
	HealthHealthy        = "Healthy"
	HealthNeedsAttention = "Needs Attention"
	HealthAtRisk         = "At Risk"
)

var PartnershipHealthValues = []string{HealthHealthy, HealthNeedsAttention, HealthAtRisk}

// Renewal status constants.
const (
	RenewalNotStarted   = "Not Started"
	RenewalInDiscussion = "In Discussion"
	RenewalRenewed      = "Renewed"
	RenewalChurned      = "Churned"
)

var RenewalStatuses = []string{RenewalNotStarted, RenewalInDiscussion, RenewalRenewed, RenewalChurned}

// Priority constants.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Note type constants.
const (
	NoteTypeCall      = "Call"
	NoteTypeEmail     = "Email"
	NoteTypeMeeting   = "Meeting"
	NoteTypeSiteVisit = "Site Visit"
	NoteTypeInternal  = "Internal Note"
)

var NoteTypes = []string{NoteTypeCall, NoteTypeEmail, NoteTypeMeeting, NoteTypeSiteVisit, NoteTypeInternal}

// Task status constants.
const (
	TaskStatusNotStarted = "Not Started"
	TaskStatusInProgress = "In Progress"
	TaskStatusWaiting    = "Waiting"
	TaskStatusPaused     = "Paused"
	TaskStatusComplete   = "Complete"
)

var TaskStatuses = []string{
	TaskStatusNotStarted,
	TaskStatusInProgress,
	TaskStatusWaiting,
	TaskStatusPaused,
	TaskStatusComplete,
}

// Attachment type constants.
const (
	AttachmentFile = "file"
	AttachmentLink = "link"
)

// OnboardingPlaceholder is shown for custom checklist rows with no text yet.
const OnboardingPlaceholder = "Click to add task…"

// DefaultOnboardingTasks is the canonical checklist seeded for every partner.
var DefaultOnboardingTasks = []string{
	"Kickoff call",
	"Sign data sharing agreement",
	"Roster upload",
	"Staff training scheduled",
	"Staff training completed",
	"Student launch",
	"30-day check-in",
}

func IsValidStatus(s string) bool     { return slices.Contains(PipelineStatuses, s) }
func IsValidTaskStatus(s string) bool { return slices.Contains(TaskStatuses, s) }
func IsValidNoteType(s string) bool   { return slices.Contains(NoteTypes, s) }
func IsValidPriority(s string) bool   { return slices.Contains(Priorities, s) }
func IsValidLeadSource(s string) bool { return slices.Contains(LeadSources, s) }
func IsValidOnboarding(s string) bool { return slices.Contains(OnboardingSteps, s) }
func IsValidHealth(s string) bool     { return slices.Contains(PartnershipHealthValues, s) }
func IsValidRenewal(s string) bool    { return slices.Contains(RenewalStatuses, s) }
func IsValidAttachment(s string) bool { return s == AttachmentFile || s == AttachmentLink }

// StatusIndex returns the position of s in the pipeline, or -1.
func StatusIndex(s string) int {
	return slices.Index(PipelineStatuses, s)
}
