package responder

// Family names a list of interchangeable response templates.
type Family string

const (
	FamilyGreeting     Family = "greeting"
	FamilyCreator      Family = "creator"
	FamilyStatus       Family = "status"
	FamilyImage        Family = "image"
	FamilyAdvanced     Family = "advanced"
	FamilyDataScience  Family = "data-science"
	FamilyWebDev       Family = "web-dev"
	FamilyCodeReview   Family = "code-review"
	FamilyMathSolution Family = "math-solution"
	FamilyQuestion     Family = "question"
	FamilyGeneral      Family = "general"
	FamilyCodingAssist Family = "coding-assist"
	FamilyMathAssist   Family = "math-assist"
	FamilyExplanation  Family = "explanation"
	FamilyChatFallback Family = "chat-fallback"
)

// DefaultResponse is returned when a family has no templates.
const DefaultResponse = "I'm here to help! What would you like to know?"

var families = map[Family][]string{
	FamilyGreeting: {
		"🤖 Hey there! I'm Chronex AI. How can I assist you today?",
		"Hello! Welcome to Chronex AI. What would you like to explore?",
		"Greetings! Ready to solve problems? 💡",
		"Hi! I'm Chronex AI. Ask me anything! 🚀",
		"Welcome! 🌟 I'm Chronex AI. How may I assist you today?",
		"Yo! 👋 Thanks for connecting. What's on your mind?",
		"Hey! 🙌 I'm Chronex AI. Ready to help with anything!",
		"Sup! 🤖 What can I do for you today?",
		"Hello there! 💻 I'm ready to assist. What do you need?",
		"Welcome aboard! 🚀 I'm Chronex AI. Let's solve something amazing!",
		"Howdy! 🤠 I'm Chronex AI. Ready to tackle problems?",
		"Salutations! 🎩 I'm your Chronex AI assistant. How can I help?",
		"Hey there, friend! 🤝 I'm Chronex AI. Let's collaborate!",
		"Welcome! 🎉 I'm Chronex AI. Let's make something great!",
		"Heya! 👍 I'm Chronex AI. Let's get to work!",
	},
	FamilyCreator: {
		"👨‍💻 **Creator Information**\n\nChronex AI was built by:\n\n**Primary Creator:** {creator}\n**Secondary Creator:** {secondary}\n\n**System:** Chronex AI Backend\n**Version:** 1.0\n\n✨ Built with passion for advanced AI solutions!",
		"🎯 **About the Creators**\n\n**{creator}**\n• Lead Developer\n• Backend Architecture\n• AI System Design\n\n**{secondary}**\n• Platform Architect\n• Integration Lead\n• Full-Stack Implementation\n\n🚀 Together creating Chronex AI!",
		"🏆 **Creator Profile**\n\n**Names:**\n• {creator}\n• {secondary}\n\n**Project:** Chronex AI\n**Specialties:**\n• Advanced AI systems\n• Backend architecture\n• Real-time processing\n\n💪 Passionate developers!",
		"📋 **Development Team**\n\n**Chronex AI System**\n\nCreated by:\n✓ {creator}\n✓ {secondary}\n\n**Capabilities:**\n• Code analysis\n• Math solving\n• Data science support\n• Web development help\n\n🌟 Advanced AI assistance!",
	},
	FamilyStatus: {
		"✅ **System Status Check**\n\n**Chronex AI Status:**\n• Status: ONLINE 🟢\n• Model: {model}\n• Version: 1.0\n{runtime}\n\n**Services:**\n✓ Backend: Running\n✓ HTTP Server: Active\n✓ Creator Library: Initialized\n✓ Response Engine: Ready\n\n🚀 All systems operational!",
		"🔍 **Health Check Results**\n\n**System Status:**\n• Overall: HEALTHY 💚\n• Uptime: Running\n{runtime}\n\n**Components:**\n✓ AI Engine: ✅ Ready\n✓ API Endpoints: ✅ Live\n✓ Data Storage: ✅ Active\n✓ Library System: ✅ Loaded\n\n⚡ Performance: Excellent",
		"📊 **Performance Metrics**\n\n**Current Status:**\n• State: ONLINE 🟢\n• Response: {model}\n{runtime}\n\n**Services Running:**\n✓ Chronex AI Service\n✓ REST API\n✓ Creator Library\n✓ Message Processor\n\n🎯 Ready to assist!",
		"🟢 **Live Status**\n\n**Chronex AI Backend**\n• Status: ACTIVE\n• Model: {model}\n{runtime}\n\n**Active Services:**\n✓ Chat Engine\n✓ Code Analyzer\n✓ Math Solver\n✓ Data Science Tools\n\n✨ System fully operational!",
	},
	FamilyImage: {
		"📸 **Image Processing Module**\n\nI can help you with image analysis!\n\n🔄 **Available Actions:**\n1. **Upload Image**: POST `/ai/upload-image` with image file\n2. **Scan & Analyze**: POST `/ai/scan-image` to upload and analyze\n3. **AI Vision**: POST `/ai/image-vision` for detailed analysis with questions\n4. **List Images**: GET `/ai/image-list` to see uploaded images\n5. **Delete Image**: DELETE `/ai/image-delete/<filename>`\n\n📝 **Note:** Advanced AI analysis requires a vision-capable API key\n\nReady to analyze an image? Upload one and I'll scan it for you! 🚀",
		"🖼️ **Image Analysis Ready!**\n\n**Upload Endpoint:**\n```\nPOST /ai/upload-image\nContent-Type: multipart/form-data\nForm field: \"image\" (your image file)\n```\n\n**AI Vision Query:**\n```\nPOST /ai/image-vision\n{\"filepath\": \"uploads/images/filename.jpg\", \"question\": \"Your question\"}\n```\n\nSupported formats: PNG, JPG, JPEG, GIF, WEBP, BMP\nMax file size: 10MB\n\nWhat would you like to analyze? 📷",
		"🎯 **Image Recognition System**\n\nYou asked about images! I can:\n\n✅ **Scan Images** - Upload images for analysis\n✅ **Detect Objects** - Identify what's in your images\n✅ **Read Text** - Extract text from images\n✅ **Answer Questions** - Ask specific questions about images\n\n**Requirements:**\n- Image file (PNG, JPG, GIF, WebP, BMP)\n- Size: Under 10MB\n\nHave an image ready? Upload it! 🚀📸",
		"🔍 **Image Scanning & Analysis**\n\n**Endpoints Available:**\n- `/ai/upload-image` - Upload and store\n- `/ai/scan-image` - Upload and immediately analyze\n- `/ai/analyze-image` - Analyze pre-uploaded image\n- `/ai/image-vision` - Ask custom questions\n- `/ai/image-list` - View all images\n- `/ai/image-delete` - Remove images\n\nLet's analyze some images! 📸✨",
	},
	FamilyAdvanced: {
		"🔬 **Advanced Technical Support**\n\nI can assist with complex scenarios:\n• Architecture design patterns\n• Performance optimization techniques\n• Distributed systems concepts\n• Concurrency & parallelism\n• System reliability engineering\n\n**Detailed approach:**\n1. Problem analysis\n2. Multiple solutions\n3. Trade-offs discussion\n4. Implementation guidance",
		"🏗️ **System Architecture**\n\nBuild robust systems:\n• Microservices architecture\n• Event-driven systems\n• CQRS patterns\n• Domain-driven design\n• Service mesh implementation\n\n**Architecture workflow:**\n1. Requirements gathering\n2. Pattern selection\n3. Design documentation\n4. Implementation strategy",
		"⚙️ **DevOps & Infrastructure**\n\nAutomate your operations:\n• CI/CD pipeline design\n• Container orchestration\n• Infrastructure as code\n• Monitoring & logging\n• Disaster recovery\n\n**Infrastructure approach:**\n1. Current state analysis\n2. Tool selection\n3. Implementation plan\n4. Optimization",
	},
	FamilyDataScience: {
		"📊 **Data Science Solutions**\n\nAnalyze and visualize data:\n• Exploratory data analysis\n• Statistical modeling\n• Data visualization\n• Feature engineering\n• Data preprocessing\n\n**Data workflow:**\n1. Data collection\n2. Exploratory analysis\n3. Model building\n4. Validation & testing",
		"🤖 **Machine Learning Guidance**\n\nBuild intelligent systems:\n• Supervised learning\n• Unsupervised learning\n• Deep learning basics\n• Model evaluation\n• Hyperparameter tuning\n\n**ML process:**\n1. Problem definition\n2. Model selection\n3. Training & testing\n4. Deployment strategy",
		"📈 **Predictive Analytics**\n\nForecasting & insights:\n• Time series analysis\n• Regression models\n• Classification algorithms\n• Anomaly detection\n• Trend analysis\n\n**Analytics approach:**\n1. Data exploration\n2. Model development\n3. Validation\n4. Interpretation",
	},
	FamilyWebDev: {
		"🌐 **Web Development**\n\nBuild modern web applications:\n• Frontend frameworks\n• Backend services\n• Database design\n• API development\n• Authentication & security\n\n**Development process:**\n1. Requirements analysis\n2. Architecture design\n3. Implementation\n4. Testing & deployment",
		"⚡ **Performance Optimization**\n\nSpeed up your applications:\n• Code optimization\n• Caching strategies\n• Asset minification\n• Database indexing\n• Load balancing\n\n**Optimization steps:**\n1. Profiling\n2. Bottleneck identification\n3. Solution implementation\n4. Performance validation",
		"🔐 **Web Security**\n\nSecure your applications:\n• OWASP top 10\n• Input validation\n• XSS prevention\n• CSRF protection\n• SQL injection prevention\n\n**Security process:**\n1. Vulnerability assessment\n2. Risk evaluation\n3. Solution implementation\n4. Testing & verification",
	},
	FamilyCodeReview: {
		"📝 **Code Review**\n\n{language}**Quality Check:**\n• Structure and organization\n• Error handling coverage\n• Performance optimization\n• Security considerations\n\n**Best Practices:**\n✓ Add doc comments\n✓ Use meaningful variable names\n✓ Implement logging\n✓ Write unit tests",
		"🔍 **Code Analysis Report**\n\n{language}**Insights:**\n• Code readability review\n• Modularity review\n• Performance metrics\n• Dependency check\n\n**Recommendations:**\n✓ Refactor complex functions\n✓ Add type annotations\n✓ Increase test coverage\n✓ Document edge cases",
		"💻 **Development Analysis**\n\n{language}**Technical Review:**\n• Syntax validation\n• Logic flow assessment\n• Resource efficiency\n• Code standards compliance\n\n**Suggestions:**\n✓ Use design patterns\n✓ Implement error handlers\n✓ Add CI/CD tests\n✓ Follow conventions",
		"✅ **Code Quality Assessment**\n\n{language}**Findings:**\n• Overall structure\n• Optimization opportunities\n• Documentation level\n• Test coverage status\n\n**Action Items:**\n✓ Simplify complex logic\n✓ Add comments\n✓ Use constants for magic numbers\n✓ Improve error messages",
		"🛡️ **Security Analysis**\n\n{language}**Security Findings:**\n• Input validation checks\n• SQL injection prevention\n• Authentication/authorization\n• Data encryption status\n\n**Security Enhancements:**\n✓ Validate all inputs\n✓ Use prepared statements\n✓ Implement rate limiting\n✓ Add security headers",
		"🧪 **Testing & Reliability**\n\n{language}**Test Coverage Analysis:**\n• Unit test coverage percentage\n• Integration test presence\n• End-to-end test scenarios\n• Error handling robustness\n\n**Testing Improvements:**\n✓ Add missing unit tests\n✓ Implement integration tests\n✓ Create smoke tests\n✓ Add regression tests",
	},
	FamilyMathSolution: {
		"🔢 **Mathematical Solution**\n\nI can help solve:\n• Algebra problems\n• Calculus derivatives and integrals\n• Linear equations systems\n• Statistics and probability\n• Geometry problems\n\n**Step-by-step approach:**\n1. Identify the problem type\n2. Apply relevant formulas\n3. Show all working\n4. Verify the solution",
		"📐 **Mathematics Assistance**\n\nShare your problem and I'll work through it!\n• Equations & expressions\n• Calculus (limits, derivatives)\n• Probability distributions\n• Matrix operations\n• Geometric proofs\n\n**My process:**\n1. Analyze the problem\n2. Select best method\n3. Detailed solutions\n4. Answer verification",
		"🧮 **Let's Solve This!**\n\nReady to tackle your math challenge:\n• Pre-algebra to advanced math\n• Real-world applications\n• Formula derivations\n• Complex calculations\n\n**What I provide:**\n1. Complete breakdown\n2. Step-by-step work\n3. Final answer\n4. Alternative methods",
		"∑ **Calculus & Advanced Math**\n\nTackle complex mathematical challenges:\n• Differential equations\n• Multivariable calculus\n• Fourier analysis\n• Complex number operations\n\n**Comprehensive approach:**\n1. Problem classification\n2. Theorem application\n3. Numerical computation\n4. Result interpretation",
		"📊 **Statistics & Probability**\n\nAnalyze data and uncertainty:\n• Probability distributions\n• Statistical inference\n• Hypothesis testing\n• Regression analysis\n\n**Statistical workflow:**\n1. Data examination\n2. Assumption testing\n3. Method selection\n4. Conclusion drawing",
	},
	FamilyQuestion: {
		"❓ **Detailed Answer**\n\nI can help you understand by:\n• Breaking down concepts\n• Providing examples\n• Explaining step-by-step\n• Offering resources",
		"🤔 **Let's Explore This**\n\nGreat question! Here's what I provide:\n• Clear explanations\n• Real-world examples\n• In-depth analysis\n• Reference materials",
		"💡 **Insight & Explanation**\n\nI'll help you understand:\n• Core concepts\n• Practical examples\n• Advanced details\n• Related topics",
		"🎯 **Practical Guidance**\n\nReal-world application focus:\n• How-to instructions\n• Best practices\n• Common pitfalls\n• Success strategies",
		"⚡ **Quick & Detailed**\n\nBoth concise and thorough:\n• Summary overview\n• Detailed breakdown\n• Key takeaways\n• Additional resources",
	},
	FamilyGeneral: {
		"Thanks for reaching out! 🙋 I'm equipped to help with:\n• Software development support\n• Problem-solving strategies\n• Research and analysis\n• Code optimization\n• Technical explanations\n\nWhat's your need?",
		"Nice to chat! 💭 I specialize in:\n• Code review & optimization\n• Mathematical solutions\n• In-depth explanations\n• Data analysis\n• Technical assistance\n\nWhat shall we work on?",
		"Got you! 👍 I can help with:\n• Python & JavaScript\n• Complex calculations\n• Detailed Q&A\n• Code suggestions\n• Analytics\n\nWhat's next?",
		"That's interesting! 🤔 I can assist you with:\n• Programming support\n• Problem-solving\n• Detailed explanations\n• Creative solutions\n• Data insights\n\nHow can I help?",
		"Absolutely! 🎯 I'm ready to help with:\n• System design and architecture\n• Database optimization\n• API development\n• Cloud solutions\n• DevOps strategies\n\nWhat would you like to tackle?",
	},
	FamilyCodingAssist: {
		"💻 **Code Assistance{detail}**\n\nI can help you with:\n• Writing and reviewing code\n• Debugging and optimization\n• Best practices and patterns\n• Algorithm implementation\n\nWhat specifically would you like help with?",
		"🛠️ **Coding Help{detail}**\n\nLet's work on your code together:\n• Tracking down bugs\n• Cleaning up structure\n• Choosing the right data structures\n• Writing tests\n\nPaste the snippet you're working on!",
		"👨‍💻 **Programming Support{detail}**\n\nHere's how I can assist:\n• Explaining error messages\n• Refactoring suggestions\n• Idiomatic patterns\n• Performance tuning\n\nWhich part is giving you trouble?",
	},
	FamilyMathAssist: {
		"🔢 **Mathematical Assistance{detail}**\n\nI can solve:\n• Algebraic equations\n• Calculus problems\n• Statistics and probability\n• Linear algebra\n\nPlease share the complete problem and I'll solve it step-by-step!",
		"📐 **Math Help{detail}**\n\nLet's work it out:\n• Set up the equations\n• Pick a solving method\n• Show each step\n• Check the result\n\nSend me the full problem statement!",
		"🧮 **Problem Solving{detail}**\n\nI'm ready for:\n• Arithmetic and algebra\n• Derivatives and integrals\n• Probability questions\n• Matrix operations\n\nWhat are we calculating today?",
	},
	FamilyExplanation: {
		"📚 **Explanation Mode{detail}**\n\nI'll break this down clearly:\n• Fundamental concepts\n• Practical examples\n• Real-world applications\n• Further resources\n\nWhat specifically would you like me to explain?",
		"🧠 **Let Me Explain{detail}**\n\nHere's how I'll approach it:\n• Start with the basics\n• Build up step by step\n• Use concrete examples\n• Point to next steps\n\nWhich part should we start with?",
		"💡 **Concept Breakdown{detail}**\n\nI'll cover:\n• Core definitions\n• How the pieces fit together\n• Common misconceptions\n• Where to learn more\n\nTell me how deep you'd like to go!",
	},
	FamilyChatFallback: {
		"💭 I'm here to help! Feel free to ask me about:\n- Programming and code help\n- Math and calculations\n- Data science questions\n- General advice and conversation\n- And much more!\n\nWhat would you like to discuss?",
		"🙌 Happy to help! I can chat about:\n- Writing and debugging code\n- Solving math problems\n- Data science and machine learning\n- Web development\n\nWhat's on your mind?",
		"👋 Ask me anything! Some ideas:\n- Review a snippet of code\n- Walk through an equation\n- Explain a tricky concept\n- Plan a project\n\nWhere should we start?",
	},
}

// Templates returns a copy of the templates of a family.
func Templates(family Family) []string {
	return append([]string(nil), families[family]...)
}

// Families lists every known family name.
func Families() []Family {
	names := make([]Family, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	return names
}
