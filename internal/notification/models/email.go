package models

import "time"

// EmailType selects the transactional template.
type EmailType string

const (
	EmailNewConventionBeneficiaryConfirmation                 EmailType = "NEW_CONVENTION_BENEFICIARY_CONFIRMATION"
	EmailNewConventionMentorConfirmation                      EmailType = "NEW_CONVENTION_MENTOR_CONFIRMATION"
	EmailNewConventionAdminNotification                       EmailType = "NEW_CONVENTION_ADMIN_NOTIFICATION"
	EmailNewConventionAgencyNotification                      EmailType = "NEW_CONVENTION_AGENCY_NOTIFICATION"
	EmailNewConventionReviewForEligibilityOrValidation        EmailType = "NEW_CONVENTION_REVIEW_FOR_ELIGIBILITY_OR_VALIDATION"
	EmailValidatedConventionFinalConfirmation                 EmailType = "VALIDATED_CONVENTION_FINAL_CONFIRMATION"
	EmailRejectedConventionNotification                       EmailType = "REJECTED_CONVENTION_NOTIFICATION"
	EmailConventionModificationRequestNotification            EmailType = "CONVENTION_MODIFICATION_REQUEST_NOTIFICATION"
	EmailMagicLinkRenewal                                     EmailType = "MAGIC_LINK_RENEWAL"
	EmailNewEstablishmentCreatedContactConfirmation           EmailType = "NEW_ESTABLISHMENT_CREATED_CONTACT_CONFIRMATION"
	EmailBeneficiaryOrMentorAlreadySignedNotification         EmailType = "BENEFICIARY_OR_MENTOR_ALREADY_SIGNED_NOTIFICATION"
	EmailNewConventionBeneficiaryConfirmationRequestSignature EmailType = "NEW_CONVENTION_BENEFICIARY_CONFIRMATION_REQUEST_SIGNATURE"
	EmailNewConventionMentorConfirmationRequestSignature      EmailType = "NEW_CONVENTION_MENTOR_CONFIRMATION_REQUEST_SIGNATURE"
	EmailShareDraftConventionByLink                           EmailType = "SHARE_DRAFT_CONVENTION_BY_LINK"
	EmailCreateImmersionAssessment                            EmailType = "CREATE_IMMERSION_ASSESSMENT"
	EmailAgencyWasActivated                                   EmailType = "AGENCY_WAS_ACTIVATED"
	EmailEditFormEstablishmentLink                            EmailType = "EDIT_FORM_ESTABLISHMENT_LINK"
	EmailContactByEmailRequest                                EmailType = "CONTACT_BY_EMAIL_REQUEST"
	EmailContactByPhoneInstructions                           EmailType = "CONTACT_BY_PHONE_INSTRUCTIONS"
	EmailContactInPersonInstructions                          EmailType = "CONTACT_IN_PERSON_INSTRUCTIONS"
)

// TemplatedEmail is one email to send. Params is rendered by the provider
// template and must marshal to a JSON object.
type TemplatedEmail struct {
	Type       EmailType `json:"type"`
	Recipients []string  `json:"recipients"`
	CC         []string  `json:"cc,omitempty"`
	Params     any       `json:"params"`
}

// EmailSent is a sent-email log entry.
type EmailSent struct {
	TemplatedEmail TemplatedEmail `json:"templatedEmail"`
	SentAt         time.Time      `json:"sentAt"`
	Error          string         `json:"error,omitempty"`
}
