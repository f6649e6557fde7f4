package constant

// Commands and callback identifiers accepted from the chat transport.
const (
	CommandStart  = "/start"
	CommandMenu   = "/menu"
	CommandDelete = "/delete"

	CallbackRegister           = "register"
	CallbackCancelRegistration = "cancel_registration"
	CallbackResendVerification = "resend_verification"
	CallbackStartStage1        = "start_stage_1"
	CallbackStartStage2        = "start_stage_2"
	CallbackStartStage3        = "start_stage_3"
)

// User-facing reply texts. Keep them in one place so the transport layers
// (HTTP and WebSocket) reply identically.
const (
	ReplyWelcomeRegister = "Welcome! You need to register before using the assistant. Please click the button below to register."
	ReplyAlreadyStarted  = "You've already started the process. Please register to continue."
	ReplyAskEmail        = "Please enter your email address. It should be either '@ehu.lt' or '@student.ehu.lt'."
	ReplyInvalidEmail    = "Invalid email! Please make sure your email is either '@ehu.lt' or '@student.ehu.lt'. Try again."
	ReplyAskCode         = "Please enter the verification code sent to your email, or click below to resend the code."
	ReplyCodeSent        = "Verification code sent to %s. Please check your email and enter the code here."
	ReplyCodeResent      = "The verification code has been resent to %s at %s. Please check your email."
	ReplyWrongCode       = "Incorrect code. Please try again or click the button below to resend the verification email."
	ReplyVerified        = "Your email has been verified! You can now use the assistant."
	ReplyAlreadyVerified = "You're verified and can continue using the assistant."
	ReplyCancelled       = "Registration has been canceled. To start again, please click the Register button."
	ReplyVerifiedHint    = "You are verified and can now use the assistant. Use /menu to configure your case."
	ReplyFinishSignup    = "Please complete your registration first."
	ReplyUseStartFirst   = "Welcome! Please use the /start command to register first."
	ReplyChooseOption    = "Please choose an option:"

	ReplyAskCase         = "Please enter your case for analysis or upload a document (PDF, DOC, or DOCX):"
	ReplyCaseReceived    = "Case received and processed. You can now start the analysis. Please describe the issues you have identified."
	ReplyAskIssues       = "Please enter the issues identified in Stage 1:"
	ReplyIssuesReceived  = "Issues received. You can now start the analysis for Stage 2. Please proceed with identifying aspects of legality and proportionality."
	ReplyAskAspects      = "Please enter the aspects of legality and proportionality you will use:"
	ReplyAspectsReceived = "All aspects are defined. Now, please write your arguments answering the question:\n\nDo the authorities' decisions comply with the requirements of (1) legality and (2) proportionality?"

	ReplyNeedStage1First = "You need to complete Stage 1 before proceeding to Stage 2."
	ReplyNeedStage2First = "You need to complete Stage 2 before proceeding to Stage 3."
	ReplyStartStageFirst = "Please start Stage %d first by selecting it from the menu."

	ReplyEmptyMessage       = "It seems like your message is empty. Please provide valid input."
	ReplyUnsupportedDoc     = "Sorry, I can only process PDF, DOC, or DOCX files. Please send your case in one of these formats or as a text message."
	ReplyDocExtractFailed   = "Sorry, I couldn't process your document. Please make sure it's a valid file or send your case as a text message."
	ReplyDocNoText          = "I couldn't extract any text from your document. Please make sure it contains readable text or send your case as a text message."
	ReplyModelFailed        = "Sorry, there was an error processing your request. Please try again."
	ReplyStorageFailed      = "There was an error updating your information. Please try again later."
	ReplyMailFailed         = "There was an error sending the verification email. You can request a resend below."
	ReplyUnexpectedState    = "Sorry, I encountered an unexpected state. Please contact support."
	ReplyDeleted            = "Your data has been deleted. To start again, use the /start command."
	ReplyUnknownInteraction = "Sorry, I didn't understand that. Use /menu to see your options."
)

// Choice labels shown next to replies.
const (
	ChoiceRegister = "Register"
	ChoiceCancel   = "Cancel"
	ChoiceResend   = "Resend verification email"
	ChoiceStage1   = "Start Stage 1"
	ChoiceStage2   = "Proceed to Stage 2"
	ChoiceStage3   = "Proceed to Stage 3"
)

// Stage system prompts. Each stage seeds a fresh dialogue context with one of
// these, followed by the persisted case materials as prior user turns.
const (
	SystemPromptStage1 = `You are a legal analysis tutor guiding a law student through Stage 1 of a case analysis.
The student has submitted a case. Your task is to help them identify the legal issues raised by the facts.
Discuss the student's proposed issues critically: confirm issues that are supported by the facts, point out
issues they have missed, and challenge issues that are not actually raised by the case. Do not move on to
questions of legality or proportionality yet. Keep answers focused and reference the facts of the case.`

	SystemPromptStage2 = `You are a legal analysis tutor guiding a law student through Stage 2 of a case analysis.
The student has submitted a case and a list of identified issues. Your task is to help them work out which
aspects of legality and proportionality apply to those issues. Evaluate the aspects the student proposes,
suggest the established tests (legal basis, legitimate aim, suitability, necessity, proportionality in the
narrow sense) where relevant, and relate every aspect back to the identified issues.`

	SystemPromptStage3 = `You are a legal analysis tutor guiding a law student through Stage 3 of a case analysis.
The student has submitted a case, the identified issues, and the aspects of legality and proportionality to
apply. Your task is to help them build the final argument answering whether the authorities' decisions comply
with the requirements of (1) legality and (2) proportionality. Review the student's draft arguments, test the
reasoning step by step against the chosen aspects, and point out gaps or unsupported conclusions.`
)
