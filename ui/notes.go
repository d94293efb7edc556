package ui

// interpretationNotes are the Markdown reading guides shown under each
// statistics sub-tab.
var interpretationNotes = map[string]string{
	"describe": `
- **Mean** and **Median** close together indicate a symmetric distribution.
- **High Std Dev** indicates more variation (heterogeneous soil).
- Watch for **Min** or **Max** values that deviate sharply: they may indicate errors or a change in soil layer.
`,
	"correlation": `
- Correlation close to +1 or -1 indicates a strong linear relationship.
- For example, **SPT** may correlate with **Gravel %** or negatively with **Moisture %**.
- Helps identify redundant parameters or hidden patterns.
`,
	"histogram": `
- The histogram shows the distribution shape of the variable.
- **Bell-shaped** suggests a normal distribution.
- **Skewed** may call for special treatment in geotechnical decisions.
- The **KDE curve** gives a smooth view of the probability distribution.
`,
	"boxplot": `
- The box plot shows the median, quartiles and outliers.
- Points outside the whiskers are **potential outliers** (extreme soil behaviour).
- Helps detect anomalies before reliability or clustering analysis.
`,
}
