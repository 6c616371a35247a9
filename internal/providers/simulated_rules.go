package providers

import "strings"

// Disclaimer is appended to every simulated answer
const Disclaimer = "**Disclaimer**: This is general legal information only, not legal advice. " +
	"Laws vary by jurisdiction and your circumstances matter. Please consult a qualified attorney " +
	"licensed in your area before acting on it."

// topicRule pairs a predicate over the lowercased user message with the answer it selects
type topicRule struct {
	Topic    string
	Matches  func(input string) bool
	Template string
}

func containsAny(keywords ...string) func(string) bool {
	return func(input string) bool {
		for _, k := range keywords {
			if strings.Contains(input, k) {
				return true
			}
		}
		return false
	}
}

// topicRules is evaluated top to bottom; the first match wins.
// Order matters: "car accident" hits the injury rule before the vehicle rule.
var topicRules = []topicRule{
	{
		Topic:   "contract",
		Matches: containsAny("contract", "agreement"),
		Template: `Based on your question about contracts, here is some general guidance:

**Key Contract Elements**: A valid contract generally needs an offer, acceptance, consideration and mutual agreement. Review every term before you sign.

**Important Considerations**:
- Read the fine print and understand the cancellation terms
- Make sure verbal promises are written into the document
- Have complex or high-value contracts reviewed before signing`,
	},
	{
		Topic:   "employment",
		Matches: containsAny("employment", "workplace", "job"),
		Template: `Regarding your employment question:

**Employee Rights**: Workers are generally entitled to a safe workplace, fair wages and protection from discrimination. The details depend on your state and jurisdiction.

**Common Issues**:
- Document wage and hour disputes carefully
- Report workplace harassment through the proper channels
- Wrongful termination may have legal remedies

**Next Steps**: Keep detailed records of dates, messages and witnesses for any workplace issue.`,
	},
	{
		Topic:   "landlord-tenant",
		Matches: containsAny("rent", "landlord", "tenant", "lease"),
		Template: `For your landlord-tenant question:

**Tenant Rights**: Tenants generally have a right to habitable housing, proper notice before entry and the return of their security deposit minus legitimate deductions.

**Important Points**:
- Keep all communication with your landlord in writing
- Check your local rent control and eviction rules
- Security deposits usually must be returned within 14 to 30 days of move-out

**Where to Get Help**: Local tenant rights organizations can explain the rules that apply in your area.`,
	},
	{
		Topic:   "personal-injury",
		Matches: containsAny("accident", "injury", "insurance"),
		Template: `Regarding your accident or injury question:

**Immediate Steps**:
- Get medical attention, even when injuries seem minor
- Document everything: photos, witness details and police reports
- Notify your insurance company promptly

**Important Considerations**:
- Keep every medical record and receipt tied to the incident
- Do not admit fault or sign anything without review
- Be careful with recorded statements to insurers

**Deadlines**: Injury claims are subject to filing time limits, so do not wait to get a case evaluation.`,
	},
	{
		Topic:   "family",
		Matches: containsAny("divorce", "custody", "family"),
		Template: `For your family law matter:

**Family Law Basics**: Divorce, child custody, support and other domestic matters are handled in state courts under their own procedures.

**Key Considerations**:
- The child's best interests drive custody decisions
- Financial records are central to support calculations
- Mediation may be required before going to court`,
	},
	{
		Topic:   "parking",
		Matches: containsAny("parking ticket", "parking violation", "parking fine"),
		Template: `Regarding your parking ticket:

**Your Options**:
- Pay the fine before the due date to avoid extra penalties
- Contest the ticket if it was issued in error
- Request a hearing to present your case

**Common Defenses**:
- Missing or unclear signage
- A malfunctioning meter (keep receipts and photos)
- A medical emergency or breakdown
- Incorrect details on the ticket

**Deadlines**: Most places allow 21 to 30 days to contest. Gather photos of the signs, the spot and any receipts before the hearing.`,
	},
	{
		Topic:   "legal-notice",
		Matches: containsAny("legal notice", "court notice", "summons", "subpoena"),
		Template: `Regarding your legal notice:

**Act Promptly**: Legal notices carry strict deadlines. Do not ignore them.

**Common Notice Types**:
- Court summons: you must appear or respond by the stated date
- Subpoena: you must testify or produce documents
- Demand letter: someone is asserting a claim against you
- Eviction notice: your landlord has started eviction proceedings

**Critical Steps**:
- Read the whole document and note every deadline
- Respond on time, even if only to ask for more time
- Keep copies of everything

**Warning**: Failing to respond can lead to a default judgment or other serious consequences.`,
	},
	{
		Topic:   "vehicle-accident",
		Matches: containsAny("car crash", "car accident", "auto accident", "vehicle accident"),
		Template: `Regarding your car accident:

**At the Scene**:
- Make sure everyone is safe and call 911 if anyone is hurt
- Call the police so an accident report is filed
- Exchange insurance and contact details with the other drivers
- Photograph the vehicles, damage, plates and the scene

**Documentation**:
- Police report number
- The other driver's insurance information
- Medical records and repair estimates

**Insurance Claims**: Report the accident promptly, stick to the facts and avoid admitting fault.`,
	},
	{
		Topic:   "legality",
		Matches: containsAny("legal", "illegal", "lawful", "unlawful"),
		Template: `Regarding whether something is legal:

**Understanding Legality**:
- Laws differ between federal, state and local levels
- What is allowed in one place may be prohibited in another
- Laws change through legislation and court decisions
- Not knowing the law is generally not a defense

**Research Resources**:
- Government websites for your state and city
- Law libraries and legal databases
- Bar association referral services

**When in Doubt**: Research the rules for your jurisdiction and err on the side of caution.`,
	},
	{
		Topic:   "criminal",
		Matches: containsAny("criminal", "arrest", "police"),
		Template: `Regarding your criminal law question:

**Constitutional Rights**:
- You have the right to remain silent; use it
- You have the right to an attorney; ask for one immediately
- You can refuse a search without a warrant

**If Arrested**:
- Do not resist, even if you believe the arrest is wrong
- Do not discuss your case with anyone except your lawyer
- Contact a criminal defense attorney as soon as possible`,
	},
}

// defaultTemplate answers anything no topic rule matches
const defaultTemplate = `Thank you for your legal question. Here is some general guidance:

**General Legal Principles**:
- Laws vary by jurisdiction and change frequently
- Documentation and evidence are crucial in legal matters
- Most claims are subject to time limits (statutes of limitations)

**Recommended Actions**:
- Gather and preserve relevant documents and evidence
- Keep detailed records of dates, communications and events
- Research the laws that apply where you live`

// ClassifyTopic returns the topic of the first matching rule, or "general"
func ClassifyTopic(input string) string {
	if rule := matchRule(input); rule != nil {
		return rule.Topic
	}
	return "general"
}

// LegalAnswer renders the templated answer for input with the disclaimer appended
func LegalAnswer(input string) string {
	template := defaultTemplate
	if rule := matchRule(input); rule != nil {
		template = rule.Template
	}
	return template + "\n\n" + Disclaimer
}

func matchRule(input string) *topicRule {
	lower := strings.ToLower(input)
	for i := range topicRules {
		if topicRules[i].Matches(lower) {
			return &topicRules[i]
		}
	}
	return nil
}
